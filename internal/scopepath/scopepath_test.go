package scopepath

import (
	"path/filepath"
	"testing"
)

func TestProjectJoinsCwdWithScopeDirName(t *testing.T) {
	dir := t.TempDir()
	got, err := Project(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, ".scope")
	if got != want {
		t.Fatalf("Project(%q) = %q, want %q", dir, got, want)
	}
}

func TestProjectResolvesRelativeToAbsolute(t *testing.T) {
	got, err := Project(".")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("Project(.) = %q, want absolute path", got)
	}
}

func TestGlobalUnderHomeDir(t *testing.T) {
	got, err := Global()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != ".scope" {
		t.Fatalf("Global() = %q, want basename .scope", got)
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scope")
	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("second EnsureDir call failed: %v", err)
	}
}
