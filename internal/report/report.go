// Package report writes the durable list of matched long paths. The report
// is written before any filesystem mutation, so a user can always inspect
// what a run was about to touch, dry run or not.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/harrison/longpath/internal/filelock"
	"github.com/harrison/longpath/internal/scan"
)

// Writer emits matched-path reports into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a report Writer for the given directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write records the matched entries, one quoted path per line, to a
// timestamp-named file, and points the latest.txt symlink at it. The write
// is atomic; readers never see a partial report. An empty matched set still
// produces the file so the artifact exists for every run.
// Returns the path of the written report.
func (w *Writer) Write(entries []scan.Entry) (string, error) {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strconv.Quote(e.Path))
		b.WriteByte('\n')
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(w.dir, fmt.Sprintf("matched-%s.txt", timestamp))

	if err := filelock.AtomicWrite(path, []byte(b.String())); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	// latest.txt is a convenience pointer; failing to refresh it does not
	// invalidate the report itself.
	symlink := filepath.Join(w.dir, "latest.txt")
	if _, err := os.Lstat(symlink); err == nil {
		os.Remove(symlink)
	}
	if err := os.Symlink(filepath.Base(path), symlink); err != nil {
		return path, fmt.Errorf("update latest symlink: %w", err)
	}

	return path, nil
}
