package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/adagradschool/scope/internal/constants"
)

// writeFileAtomic writes data to path via a temp sibling + rename so a
// reader never observes a partially written file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// readFileTolerant reads path, retrying once after a short wait if the file
// is transiently missing: the window between a concurrent writer's temp
// create and its rename.
func readFileTolerant(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	time.Sleep(constants.StateRaceRetryWait)
	return os.ReadFile(path)
}

// readFieldString reads a single-field file, returning "" if it does not
// exist (an empty field is not distinguishable from a missing one — every
// field file is written unconditionally by save()).
func readFieldString(path string) (string, error) {
	data, err := readFileTolerant(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func writeFieldString(path, value string) error {
	return writeFileAtomic(path, []byte(value+"\n"), 0o644)
}

// withLock serializes f against any other caller locking the same path
// (a sibling "<name>.lock" file), using gofrs/flock advisory exclusive
// locking. This backs id allocation and any other read-modify-write the
// store must serialize across separate CLI invocations.
func withLock(lockPath string, f func() error) error {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return err
	}
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquiring lock %s: %w", lockPath, err)
	}
	defer fl.Unlock()
	return f()
}
