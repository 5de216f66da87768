package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/repo-downloader/internal/repopath"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), repopath.NewDefaultMapper())
	require.NoError(t, err)
	require.NoError(t, store.EnsureRoot())
	return store
}

func populate(t *testing.T, store *Store, id int64, files ...string) {
	t.Helper()
	dir, err := store.Path(id)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestPathUnderRoot(t *testing.T) {
	store := newTestStore(t)
	dir, err := store.Path(7182480)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root, "07", "18", "24", "80"), dir)
}

func TestExists(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.Exists(62)
	require.NoError(t, err)
	assert.False(t, ok)

	// An empty directory does not count as a completed download.
	dir, err := store.Path(62)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	ok, err = store.Exists(62)
	require.NoError(t, err)
	assert.False(t, ok)

	populate(t, store, 62, "README.md")
	ok, err = store.Exists(62)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureRootIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.EnsureRoot())
	require.NoError(t, store.EnsureRoot())
	info, err := os.Stat(store.TmpDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestScanRoundTrip(t *testing.T) {
	store := newTestStore(t)

	ids := []int64{0, 1, 62, 100, 1563099, 7182480, 123456789}
	for _, id := range ids {
		populate(t, store, id, "main.go")
	}

	// Noise the scan must ignore: the staging area and a stray
	// non-conforming directory.
	require.NoError(t, os.MkdirAll(filepath.Join(store.TmpDir(), "partial"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root, "lost+found"), 0o755))

	got, err := store.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}

func TestScanEmptyRepoDirCounts(t *testing.T) {
	store := newTestStore(t)
	dir, err := store.Path(42)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	got, err := store.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, got)
}

func TestScanCancellation(t *testing.T) {
	store := newTestStore(t)
	populate(t, store, 1, "f")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Scan(ctx)
	assert.Error(t, err)
}
