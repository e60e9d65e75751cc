// Package relocate moves long-path entries out of a target tree into a
// mirror under the relocation root, preserving relative structure.
//
// The move protocol is copy-then-delete: a source file is never removed
// until its copy has been confirmed at the destination, so no error path
// can lose data. Directories are mirrored first and removed from the
// source only once empty.
package relocate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/longpath/internal/scan"
)

// ErrPathEscape indicates a computed destination would fall outside the
// relocation root, or the entry path has no remainder relative to the
// target root. Such entries are recorded as failed and skipped.
var ErrPathEscape = errors.New("destination escapes relocation root")

// Outcome classifies the result of relocating a single entry.
type Outcome int

const (
	// OutcomeMoved means the entry now exists under the relocation root
	// and, for files, no longer exists at the source.
	OutcomeMoved Outcome = iota
	// OutcomeSkippedMissing means the entry vanished between scan and
	// move, typically because it was relocated as part of another entry.
	OutcomeSkippedMissing
	// OutcomeFailed means the entry could not be relocated; the source is
	// left untouched.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeSkippedMissing:
		return "skipped-missing"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MoveResult is the per-entry record produced by the relocator.
type MoveResult struct {
	Entry    scan.Entry
	Dest     string
	Outcome  Outcome
	Attempts int
	Err      error
}

// Summary tallies outcomes across a batch. The batch itself never fails;
// individual failures degrade to Failed counts.
type Summary struct {
	Moved   int
	Skipped int
	Failed  int
}

// Logger is the subset of logging used by the relocator.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ProgressFunc receives the 1-based index, the batch total, and the path
// currently being processed. Purely observational.
type ProgressFunc func(current, total int, path string)

// Options configures a Relocator.
type Options struct {
	// MaxRetries is the number of copy attempts per file. Minimum 1.
	MaxRetries int
	// BaseDelay is the first backoff delay; it doubles per failed attempt.
	BaseDelay time.Duration
	// Logger receives per-entry warnings and errors. May be nil.
	Logger Logger
	// Progress is invoked once per entry before it is processed. May be nil.
	Progress ProgressFunc
}

// Relocator moves entries from beneath targetRoot to the mirror location
// beneath destRoot. Processing is strictly sequential: the deepest-first
// ordering contract only holds when no two entries are in flight at once.
type Relocator struct {
	targetRoot string
	destRoot   string
	maxRetries int
	baseDelay  time.Duration
	logger     Logger
	progress   ProgressFunc
}

// NewRelocator creates a Relocator. targetRoot and destRoot should be
// absolute paths.
func NewRelocator(targetRoot, destRoot string, opts Options) *Relocator {
	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Relocator{
		targetRoot: targetRoot,
		destRoot:   destRoot,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     opts.Logger,
		progress:   opts.Progress,
	}
}

// Relocate processes the ordered entries one at a time. Entries must be in
// deepest-first order (see scan.OrderDeepestFirst). Cancellation via ctx is
// a clean stop: the in-flight entry completes its copy-then-delete unit (or
// aborts with the source intact) and no further entries are started.
// Partial results are returned either way.
func (r *Relocator) Relocate(ctx context.Context, entries []scan.Entry) ([]MoveResult, Summary) {
	results := make([]MoveResult, 0, len(entries))
	var summary Summary

	total := len(entries)
	for i, entry := range entries {
		if ctx.Err() != nil {
			r.warnf("relocation interrupted after %d of %d entries", i, total)
			break
		}

		if r.progress != nil {
			r.progress(i+1, total, entry.Path)
		}

		res := r.relocateOne(ctx, entry)
		switch res.Outcome {
		case OutcomeMoved:
			summary.Moved++
		case OutcomeSkippedMissing:
			summary.Skipped++
		case OutcomeFailed:
			summary.Failed++
			r.errorf("failed to relocate %s: %v", entry.Path, res.Err)
		}
		results = append(results, res)
	}

	return results, summary
}

func (r *Relocator) relocateOne(ctx context.Context, entry scan.Entry) MoveResult {
	res := MoveResult{Entry: entry}

	// Re-check existence: an ancestor move or an earlier entry may have
	// taken this path with it.
	info, err := os.Lstat(entry.Path)
	if err != nil {
		if os.IsNotExist(err) {
			res.Outcome = OutcomeSkippedMissing
			return res
		}
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("stat source: %w", err)
		return res
	}

	dest, err := r.destinationFor(entry.Path)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Dest = dest

	switch {
	case info.IsDir():
		res.Outcome, res.Err = r.relocateDir(entry.Path, dest, info)
	case info.Mode()&os.ModeSymlink != 0:
		res.Outcome, res.Err = r.relocateSymlink(entry.Path, dest)
		res.Attempts = 1
	default:
		res.Outcome, res.Attempts, res.Err = r.relocateFile(ctx, entry.Path, dest, info)
	}
	return res
}

// destinationFor strips the target root prefix from path and re-roots the
// remainder under the relocation root. The remainder must be non-empty and
// must not traverse upward.
func (r *Relocator) destinationFor(path string) (string, error) {
	rel, err := filepath.Rel(r.targetRoot, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}
	if rel == "" || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, path)
	}
	return filepath.Join(r.destRoot, rel), nil
}

// relocateDir mirrors the directory at the destination, then removes the
// source only if it is now empty. A non-empty source (short-named children
// left behind) is a silent no-op removal.
func (r *Relocator) relocateDir(src, dest string, info os.FileInfo) (Outcome, error) {
	if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
		return OutcomeFailed, fmt.Errorf("create destination directory: %w", err)
	}
	// Remove refuses non-empty directories; that is exactly the guard we
	// rely on, so its error is ignored.
	if err := os.Remove(src); err == nil {
		r.pokeParent(src)
	}
	return OutcomeMoved, nil
}

// relocateSymlink recreates the link at the destination and removes the
// source link. The link target is carried over verbatim, never resolved.
func (r *Relocator) relocateSymlink(src, dest string) (Outcome, error) {
	target, err := os.Readlink(src)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("read link: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return OutcomeFailed, fmt.Errorf("create destination parent: %w", err)
	}
	if err := os.Symlink(target, dest); err != nil && !os.IsExist(err) {
		return OutcomeFailed, fmt.Errorf("create destination link: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return OutcomeFailed, fmt.Errorf("remove source link after copy: %w", err)
	}
	r.pokeParent(src)
	return OutcomeMoved, nil
}

// relocateFile copies the file to the destination with retry and backoff,
// then deletes the source. The source is only removed after a confirmed
// successful copy.
func (r *Relocator) relocateFile(ctx context.Context, src, dest string, info os.FileInfo) (Outcome, int, error) {
	attempts := 0
	delay := r.baseDelay
	var copyErr error

	for attempts < r.maxRetries {
		attempts++
		copyErr = copyFile(src, dest, info)
		if copyErr == nil {
			break
		}
		if attempts == r.maxRetries {
			break
		}
		r.warnf("copy attempt %d/%d for %s failed: %v (retrying in %s)",
			attempts, r.maxRetries, src, copyErr, delay)
		select {
		case <-ctx.Done():
			return OutcomeFailed, attempts, fmt.Errorf("interrupted during retry backoff: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	if copyErr != nil {
		return OutcomeFailed, attempts, fmt.Errorf("copy after %d attempts: %w", attempts, copyErr)
	}

	if err := os.Remove(src); err != nil {
		// The copy landed but the source remains; surface it as a failure
		// so the summary draws attention, but nothing was lost.
		return OutcomeFailed, attempts, fmt.Errorf("remove source after copy (destination retained): %w", err)
	}

	r.pokeParent(src)
	return OutcomeMoved, attempts, nil
}

// copyFile copies src to dest preserving mode and timestamps. The content
// lands via a temp file and rename so the destination is never partial.
// Parent directory creation happens here so a broken destination tree is
// retried along with the copy itself.
func copyFile(src, dest string, info os.FileInfo) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create destination parent: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".longpath-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, in)
	if err != nil {
		return fmt.Errorf("copy content: %w", err)
	}
	if written != info.Size() {
		return fmt.Errorf("short copy: wrote %d of %d bytes", written, info.Size())
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("preserve mode: %w", err)
	}
	if err := os.Chtimes(tmpPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve timestamps: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("finalize destination: %w", err)
	}
	tmp = nil
	return nil
}

// pokeParent touches the source's parent directory so an external sync
// watcher notices the change. Strictly best-effort; failures are ignored.
func (r *Relocator) pokeParent(src string) {
	now := time.Now()
	_ = os.Chtimes(filepath.Dir(src), now, now)
}

func (r *Relocator) warnf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warnf(format, args...)
	}
}

func (r *Relocator) errorf(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Errorf(format, args...)
	}
}
