package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/longpath/internal/scan"
)

func entryFor(path string) scan.Entry {
	return scan.Entry{Path: path, Length: utf8.RuneCountInString(path)}
}

func TestWriteQuotedPaths(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.Write([]scan.Entry{
		entryFor("/target/a b/long.txt"),
		entryFor("/target/plain.txt"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "matched-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"/target/a b/long.txt"`, lines[0])
	assert.Equal(t, `"/target/plain.txt"`, lines[1])
}

func TestWriteEmptyMatchedSetStillProducesFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.Write(nil)
	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestWriteUpdatesLatestSymlink(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.Write([]scan.Entry{entryFor("/target/x")})
	require.NoError(t, err)

	target, err := os.Readlink(filepath.Join(dir, "latest.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(path), target)
}

func TestWriteCreatesReportDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	w := NewWriter(dir)

	path, err := w.Write([]scan.Entry{entryFor("/target/x")})
	require.NoError(t, err)
	assert.FileExists(t, path)
}
