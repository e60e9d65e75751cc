package scan

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryPaths(entries []Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	return paths
}

func TestNewScannerMissingTarget(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestNewScannerTargetIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := NewScanner(path, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestScanEnumeratesFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deeper"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0644))

	s, err := NewScanner(root, nil)
	require.NoError(t, err)

	res, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, res.Errors)

	paths := entryPaths(res.Entries)
	assert.Contains(t, paths, filepath.Join(root, "a.txt"))
	assert.Contains(t, paths, filepath.Join(root, "sub"))
	assert.Contains(t, paths, filepath.Join(root, "sub", "deeper"))
	assert.Contains(t, paths, filepath.Join(root, "sub", "b.txt"))
	assert.NotContains(t, paths, root, "the root itself is not an entry")
}

func TestScanIncludesHiddenEntries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden", "secret.txt"), []byte("s"), 0644))

	s, err := NewScanner(root, nil)
	require.NoError(t, err)

	res, err := s.Scan()
	require.NoError(t, err)

	paths := entryPaths(res.Entries)
	assert.Contains(t, paths, filepath.Join(root, ".hidden"))
	assert.Contains(t, paths, filepath.Join(root, ".hidden", "secret.txt"))
}

func TestScanCachesRuneLength(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "héllo.txt"), []byte("x"), 0644))

	s, err := NewScanner(root, nil)
	require.NoError(t, err)

	res, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)

	e := res.Entries[0]
	assert.Equal(t, unicodeLen(e.Path), e.Length)
	assert.Less(t, e.Length, len(e.Path), "rune count differs from byte count for multi-byte names")
}

func unicodeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	realDir := filepath.Join(root, "real")
	require.NoError(t, os.MkdirAll(realDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(realDir, "inside.txt"), []byte("x"), 0644))

	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(realDir, link))

	s, err := NewScanner(root, nil)
	require.NoError(t, err)

	res, err := s.Scan()
	require.NoError(t, err)

	paths := entryPaths(res.Entries)
	assert.Contains(t, paths, link, "the symlink itself is enumerated")
	assert.NotContains(t, paths, filepath.Join(link, "inside.txt"), "traversal must not follow the link")
	assert.Contains(t, paths, filepath.Join(realDir, "inside.txt"))
}

func TestScanExcludePrunesSubtree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg", "index.js"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0644))

	s, err := NewScanner(root, []string{"node_modules"})
	require.NoError(t, err)

	res, err := s.Scan()
	require.NoError(t, err)

	paths := entryPaths(res.Entries)
	assert.Contains(t, paths, filepath.Join(root, "keep.txt"))
	assert.NotContains(t, paths, filepath.Join(root, "node_modules"))
	assert.NotContains(t, paths, filepath.Join(root, "node_modules", "pkg"))
}

func TestScanExcludeGlobPattern(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.bak"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0644))

	s, err := NewScanner(root, []string{"**/*.bak", "*.bak"})
	require.NoError(t, err)

	res, err := s.Scan()
	require.NoError(t, err)

	paths := entryPaths(res.Entries)
	assert.NotContains(t, paths, filepath.Join(root, "old.bak"))
	assert.Contains(t, paths, filepath.Join(root, "keep.txt"))
}

func TestScanPermissionErrorsAreNonFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.MkdirAll(locked, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "hidden.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "open.txt"), []byte("x"), 0644))

	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	s, err := NewScanner(root, nil)
	require.NoError(t, err)

	res, err := s.Scan()
	require.NoError(t, err, "permission errors must not abort the scan")
	assert.NotEmpty(t, res.Errors)

	paths := entryPaths(res.Entries)
	assert.Contains(t, paths, filepath.Join(root, "open.txt"))
	assert.Contains(t, paths, locked, "the unreadable directory itself is still enumerated")
}
