package downloader

import (
	"fmt"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/internal/fetcher"
	"github.com/thep200/repo-downloader/internal/lookup"
	"github.com/thep200/repo-downloader/internal/storage"
	"github.com/thep200/repo-downloader/pkg/kafka"
	"github.com/thep200/repo-downloader/pkg/log"
)

func FactoryDownloader(version string, logger log.Logger, config *cfg.Config, lookuper lookup.Lookuper, fetch fetcher.Fetcher, store *storage.Store) (Downloader, error) {
	switch version {
	case "v1":
		return NewDownloaderV1(logger, config, lookuper, fetch, store)
	case "v2":
		producer := kafka.NewProducer(config, logger, config.Kafka.Topics.Result)
		return NewDownloaderV2(logger, config, lookuper, fetch, store, producer)
	default:
		return nil, fmt.Errorf("[ERROR] Unsupported downloader version: %s", version)
	}
}
