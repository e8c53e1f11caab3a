package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestDiagnosticOmitsEmptySections(t *testing.T) {
	e := New(KindFatal, "something broke")
	d := e.Diagnostic()
	if d != "Error: something broke" {
		t.Fatalf("Diagnostic() = %q", d)
	}
}

func TestDiagnosticIncludesCauseAndFix(t *testing.T) {
	e := NotFound("session 5")
	d := e.Diagnostic()
	if !strings.Contains(d, "Error: session 5 not found") {
		t.Fatalf("Diagnostic() = %q", d)
	}
	if !strings.Contains(d, "Fix:") {
		t.Fatalf("Diagnostic() = %q, want a Fix line", d)
	}
}

func TestIsKind(t *testing.T) {
	e := AliasConflict("taken")
	if !IsKind(e, KindAliasConflict) {
		t.Fatal("expected IsKind to match")
	}
	if IsKind(e, KindFatal) {
		t.Fatal("expected IsKind to reject a different kind")
	}
	if IsKind(errors.New("plain"), KindFatal) {
		t.Fatal("expected IsKind to reject a non-diag error")
	}
}

func TestWrapUnwraps(t *testing.T) {
	underlying := errors.New("boom")
	e := Wrap(KindMux, underlying, "creating window")
	if !errors.Is(e, underlying) {
		t.Fatal("expected Wrap to preserve Unwrap chain")
	}
}

func TestWithCauseAndFixDoNotMutateOriginal(t *testing.T) {
	base := New(KindRubric, "bad rubric")
	withCause := base.WithCause("missing gates section")
	if base.Cause != "" {
		t.Fatalf("base.Cause = %q, want empty (WithCause must not mutate)", base.Cause)
	}
	if withCause.Cause != "missing gates section" {
		t.Fatalf("withCause.Cause = %q", withCause.Cause)
	}
}
