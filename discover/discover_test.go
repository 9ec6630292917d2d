package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("<s> <p> <o> <g> .\n"), 0o644))
	}
}

func TestLocalDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"b.nq",
		"a.nq",
		"c.nq.gz",
		"notes.txt",
		"nested/d.nq",
	)

	files, err := Local{}.Discover(context.Background(), dir, "*.nq", false)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.nq"),
		filepath.Join(dir, "b.nq"),
		filepath.Join(dir, "c.nq.gz"),
	}, files, "sorted, gz included, nested and non-matching excluded")
}

func TestLocalDiscoverRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.nq", "nested/deep/d.nq")

	files, err := Local{}.Discover(context.Background(), dir, "*.nq", true)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "nested/deep/d.nq"), files[1])
}

func TestLocalDiscoverEmpty(t *testing.T) {
	files, err := Local{}.Discover(context.Background(), t.TempDir(), "*.nq", false)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalDiscoverMissingDir(t *testing.T) {
	_, err := Local{}.Discover(context.Background(), "/nonexistent/data", "*.nq", false)
	assert.Error(t, err)
}
