// Downloader version 1
// Sequential downloads, one identifier at a time, in the order given.

package downloader

import (
	"context"
	"errors"
	"time"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/internal/fetcher"
	"github.com/thep200/repo-downloader/internal/lookup"
	"github.com/thep200/repo-downloader/internal/model"
	"github.com/thep200/repo-downloader/internal/storage"
	"github.com/thep200/repo-downloader/pkg/log"
)

type DownloaderV1 struct {
	Logger   log.Logger
	Config   *cfg.Config
	Lookuper lookup.Lookuper
	Fetcher  fetcher.Fetcher
	Store    *storage.Store
}

func NewDownloaderV1(logger log.Logger, config *cfg.Config, lookuper lookup.Lookuper, fetch fetcher.Fetcher, store *storage.Store) (*DownloaderV1, error) {
	return &DownloaderV1{
		Logger:   logger,
		Config:   config,
		Lookuper: lookuper,
		Fetcher:  fetch,
		Store:    store,
	}, nil
}

func (d *DownloaderV1) Download(ctx context.Context, ids []int64) Stats {
	startTime := time.Now()
	d.Logger.Info(ctx, "Starting download of %d repositories to %s", len(ids), d.Store.Root)

	var stats Stats
	for _, id := range ids {
		if ctx.Err() != nil {
			d.Logger.Warn(ctx, "Download run cancelled after %d of %d identifiers", stats.Downloaded+stats.Skipped+stats.Failed, len(ids))
			stats.Failed += len(ids) - (stats.Downloaded + stats.Skipped + stats.Failed)
			break
		}

		status, _, err := d.downloadOne(ctx, id)
		switch status {
		case model.DownloadStatusDone:
			stats.Downloaded++
		case model.DownloadStatusSkipped:
			stats.Skipped++
		default:
			d.Logger.Error(ctx, "Failed to download id=%d: %v", id, err)
			stats.Failed++
		}
	}

	d.Logger.Info(ctx, "Done in %v: %d downloaded, %d skipped, %d failed",
		time.Since(startTime).Round(time.Second), stats.Downloaded, stats.Skipped, stats.Failed)
	return stats
}

// downloadOne runs the lookup-map-fetch sequence for a single identifier
// and reports the resulting status together with the storage path.
func (d *DownloaderV1) downloadOne(ctx context.Context, id int64) (string, string, error) {
	dest, err := d.Store.Path(id)
	if err != nil {
		return model.DownloadStatusFailed, "", err
	}

	exists, err := d.Store.Exists(id)
	if err != nil {
		return model.DownloadStatusFailed, dest, err
	}
	if exists {
		d.Logger.Info(ctx, "id=%d already in %s -- skipping", id, dest)
		return model.DownloadStatusSkipped, dest, nil
	}

	info, err := d.Lookuper.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			d.Logger.Warn(ctx, "Unknown repository id=%d", id)
		}
		return model.DownloadStatusFailed, dest, err
	}

	if err := d.Fetcher.Fetch(ctx, info, dest); err != nil {
		if errors.Is(err, fetcher.ErrExists) {
			d.Logger.Info(ctx, "id=%d already in %s -- skipping", id, dest)
			return model.DownloadStatusSkipped, dest, nil
		}
		return model.DownloadStatusFailed, dest, err
	}

	return model.DownloadStatusDone, dest, nil
}
