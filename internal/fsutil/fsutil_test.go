package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
)

func TestEnsureParentDir(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.json")

	// --- Act ---
	err := fsutil.EnsureParentDir(path)

	// --- Assert ---
	require.NoError(t, err)
	require.DirExists(t, filepath.Dir(path))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestEnsureParentDir_ExistingDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, fsutil.EnsureParentDir(filepath.Join(dir, "out.json")))
}

func TestEnsureDir_ReturnsPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := filepath.Join(t.TempDir(), "results")

	// --- Act ---
	created, err := fsutil.EnsureDir(dir)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, dir, created)
	require.DirExists(t, dir)
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	for _, name := range []string{"a.sysml", "sub/b.sysml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	// --- Act ---
	files, err := fsutil.FindFilesByExtension(root, ".sysml")

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, files, 2)
}
