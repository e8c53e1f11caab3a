// Package scopepath resolves the project and global scope roots. It mirrors
// the teacher's workspace-discovery idiom (walk up from cwd looking for a
// marker directory) but scope's marker is always the cwd itself: a project
// scope root is conventionally "<cwd>/.scope", never discovered by walking
// parents, since a session tree is rooted at the invocation directory.
package scopepath

import (
	"os"
	"path/filepath"

	"github.com/adagradschool/scope/internal/constants"
	"github.com/adagradschool/scope/internal/util"
)

// Project returns the project scope root for the given working directory.
func Project(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, constants.ScopeDirName), nil
}

// ProjectFromCwd is a convenience wrapper around Project(os.Getwd()).
func ProjectFromCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return Project(cwd)
}

// Global returns the global scope root under the user's home directory.
func Global() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(util.ExpandHome(home), constants.ScopeDirName), nil
}

// EnsureDir idempotently creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
