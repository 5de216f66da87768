package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/internal/lookup"
	"github.com/thep200/repo-downloader/internal/model"
	"github.com/thep200/repo-downloader/internal/repopath"
	"github.com/thep200/repo-downloader/internal/storage"
	"github.com/thep200/repo-downloader/pkg/log"
)

type stubLookuper struct {
	known map[int64]*lookup.Info
}

func (s *stubLookuper) Lookup(ctx context.Context, id int64) (*lookup.Info, error) {
	info, ok := s.known[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", lookup.ErrNotFound, id)
	}
	return info, nil
}

type stubFetcher struct {
	failIDs map[int64]bool
	fetched []int64
}

func (s *stubFetcher) Fetch(ctx context.Context, info *lookup.Info, dest string) error {
	if s.failIDs[info.ID] {
		return fmt.Errorf("boom")
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dest, "README.md"), []byte(info.Name), 0o644); err != nil {
		return err
	}
	s.fetched = append(s.fetched, info.ID)
	return nil
}

type capturePublisher struct {
	results []model.DownloadResultMessage
}

func (c *capturePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	c.results = append(c.results, value.(model.DownloadResultMessage))
	return nil
}

func newTestDeps(t *testing.T) (*cfg.Config, log.Logger, *storage.Store) {
	t.Helper()
	loader, err := cfg.NewMockLoader()
	require.NoError(t, err)
	config, err := loader.Load()
	require.NoError(t, err)

	logger, err := log.NewCslLogger()
	require.NoError(t, err)

	store, err := storage.NewStore(t.TempDir(), repopath.NewDefaultMapper())
	require.NoError(t, err)
	require.NoError(t, store.EnsureRoot())
	return config, logger, store
}

func TestDownloadV1(t *testing.T) {
	config, logger, store := newTestDeps(t)

	lk := &stubLookuper{known: map[int64]*lookup.Info{
		62:      {ID: 62, User: "octocat", Name: "example", DefaultBranch: "master"},
		1563099: {ID: 1563099, User: "octocat", Name: "other", DefaultBranch: "main"},
	}}
	ft := &stubFetcher{}

	d, err := NewDownloaderV1(logger, config, lk, ft, store)
	require.NoError(t, err)

	stats := d.Download(context.Background(), []int64{62, 1563099})
	assert.True(t, stats.Ok())
	assert.Equal(t, Stats{Downloaded: 2}, stats)

	// The repositories landed at their canonical paths.
	dir, err := store.Path(62)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	require.NoError(t, err)

	// A second run skips everything.
	stats = d.Download(context.Background(), []int64{62, 1563099})
	assert.Equal(t, Stats{Skipped: 2}, stats)
	assert.Len(t, ft.fetched, 2)
}

func TestDownloadV1CountsFailures(t *testing.T) {
	config, logger, store := newTestDeps(t)

	lk := &stubLookuper{known: map[int64]*lookup.Info{
		1: {ID: 1, User: "a", Name: "one"},
		2: {ID: 2, User: "a", Name: "two"},
	}}
	ft := &stubFetcher{failIDs: map[int64]bool{2: true}}

	d, err := NewDownloaderV1(logger, config, lk, ft, store)
	require.NoError(t, err)

	// id 3 is unknown, id 2 fails to fetch, id 1 succeeds.
	stats := d.Download(context.Background(), []int64{1, 2, 3})
	assert.False(t, stats.Ok())
	assert.Equal(t, Stats{Downloaded: 1, Failed: 2}, stats)
}

func TestDownloadV1Cancelled(t *testing.T) {
	config, logger, store := newTestDeps(t)

	d, err := NewDownloaderV1(logger, config, &stubLookuper{}, &stubFetcher{}, store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := d.Download(ctx, []int64{1, 2, 3})
	assert.Equal(t, Stats{Failed: 3}, stats)
}

func TestDownloadV2PublishesResults(t *testing.T) {
	config, logger, store := newTestDeps(t)

	lk := &stubLookuper{known: map[int64]*lookup.Info{
		62: {ID: 62, User: "octocat", Name: "example"},
	}}
	pub := &capturePublisher{}

	d, err := NewDownloaderV2(logger, config, lk, &stubFetcher{}, store, pub)
	require.NoError(t, err)

	stats := d.Download(context.Background(), []int64{62, 99})
	assert.Equal(t, Stats{Downloaded: 1, Failed: 1}, stats)

	require.Len(t, pub.results, 2)
	assert.Equal(t, model.DownloadStatusDone, pub.results[0].Status)
	assert.Equal(t, int64(62), pub.results[0].ID)
	assert.NotEmpty(t, pub.results[0].Path)
	assert.Equal(t, model.DownloadStatusFailed, pub.results[1].Status)
	assert.Contains(t, pub.results[1].Error, "not found")
}

func TestFactoryDownloader(t *testing.T) {
	config, logger, store := newTestDeps(t)

	d, err := FactoryDownloader("v1", logger, config, &stubLookuper{}, &stubFetcher{}, store)
	require.NoError(t, err)
	assert.IsType(t, &DownloaderV1{}, d)

	_, err = FactoryDownloader("v9", logger, config, &stubLookuper{}, &stubFetcher{}, store)
	assert.Error(t, err)
}
