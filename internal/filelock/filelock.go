// Package filelock provides the run lock that keeps two relocation runs
// from mutating the same tree, and atomic file writes for report artifacts.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock is a process-level advisory lock backed by flock.
// Only one relocation run may hold it at a time.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// NewRunLock creates a run lock for the given lock file path.
// The lock file is created on first acquisition.
func NewRunLock(path string) *RunLock {
	return &RunLock{
		flock: flock.New(path),
		path:  path,
	}
}

// TryAcquire attempts to take the lock without blocking.
// Returns false when another process already holds it.
func (rl *RunLock) TryAcquire() (bool, error) {
	acquired, err := rl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", rl.path, err)
	}
	return acquired, nil
}

// Release releases the lock.
func (rl *RunLock) Release() error {
	if err := rl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", rl.path, err)
	}
	return nil
}

// AtomicWrite writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial report. The
// parent directory is created if missing. If the write fails at any point,
// an existing file at path is left unchanged.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Same directory keeps the rename on one filesystem, which is what
	// makes it atomic.
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}
