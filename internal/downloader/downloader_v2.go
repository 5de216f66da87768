// Downloader version 2
// Same sequential flow as v1, but every outcome is also published to the
// download result topic so other services on the shared file system can
// react without polling the tree.

package downloader

import (
	"context"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/internal/fetcher"
	"github.com/thep200/repo-downloader/internal/lookup"
	"github.com/thep200/repo-downloader/internal/model"
	"github.com/thep200/repo-downloader/internal/storage"
	"github.com/thep200/repo-downloader/pkg/log"
)

// ResultPublisher is satisfied by kafka.Producer.
type ResultPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

type DownloaderV2 struct {
	*DownloaderV1
	Publisher ResultPublisher
}

func NewDownloaderV2(logger log.Logger, config *cfg.Config, lookuper lookup.Lookuper, fetch fetcher.Fetcher, store *storage.Store, publisher ResultPublisher) (*DownloaderV2, error) {
	v1, err := NewDownloaderV1(logger, config, lookuper, fetch, store)
	if err != nil {
		return nil, err
	}
	return &DownloaderV2{
		DownloaderV1: v1,
		Publisher:    publisher,
	}, nil
}

func (d *DownloaderV2) Download(ctx context.Context, ids []int64) Stats {
	var stats Stats
	for _, id := range ids {
		if ctx.Err() != nil {
			stats.Failed += len(ids) - (stats.Downloaded + stats.Skipped + stats.Failed)
			break
		}

		status, dest, err := d.downloadOne(ctx, id)
		switch status {
		case model.DownloadStatusDone:
			stats.Downloaded++
		case model.DownloadStatusSkipped:
			stats.Skipped++
		default:
			d.Logger.Error(ctx, "Failed to download id=%d: %v", id, err)
			stats.Failed++
		}

		result := model.DownloadResultMessage{
			ID:     id,
			Path:   dest,
			Status: status,
		}
		if err != nil {
			result.Error = err.Error()
		}
		if errPub := d.Publisher.Publish(ctx, "result", result); errPub != nil {
			d.Logger.Error(ctx, "Failed to publish result for id=%d: %v", id, errPub)
		}
	}
	return stats
}
