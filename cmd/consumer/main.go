package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/internal/downloader"
	"github.com/thep200/repo-downloader/internal/fetcher"
	"github.com/thep200/repo-downloader/internal/lookup"
	"github.com/thep200/repo-downloader/internal/model"
	"github.com/thep200/repo-downloader/internal/repopath"
	"github.com/thep200/repo-downloader/internal/storage"
	"github.com/thep200/repo-downloader/pkg/db"
	"github.com/thep200/repo-downloader/pkg/kafka"
	"github.com/thep200/repo-downloader/pkg/log"
)

func main() {
	// Parse command line arguments
	consumerType := flag.String("type", "", "Type of consumer to run (download, repo)")
	flag.Parse()

	if *consumerType == "" {
		fmt.Println("Please specify a consumer type: -type=[download|repo]")
		os.Exit(1)
	}

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, _ := log.NewCslLogger()

	// Setup database
	mysql, _ := db.NewMysql(config)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create models
	repoModel, _ := model.NewRepo(config, logger, mysql)
	if err := mysql.Migrate(repoModel); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start the appropriate consumer based on type
	switch *consumerType {
	case "download":
		if err := startDownloadConsumer(ctx, config, logger, repoModel); err != nil {
			logger.Error(ctx, "Failed to start download consumer: %v", err)
			os.Exit(1)
		}
	case "repo":
		startRepoConsumer(ctx, config, logger, repoModel)
	default:
		logger.Error(ctx, "Unknown consumer type: %s", *consumerType)
		os.Exit(1)
	}

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

// startDownloadConsumer handles download requests: each message carries one
// repository identifier to look up, map to its storage path and fetch. The
// outcome of every request is published to the result topic.
func startDownloadConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, repoModel *model.Repo) error {
	groupWidth := config.Storage.GroupWidth
	if groupWidth == 0 {
		groupWidth = repopath.DefaultGroupWidth
	}
	minGroups := config.Storage.MinGroups
	if minGroups == 0 {
		minGroups = repopath.DefaultMinGroups
	}
	mapper, err := repopath.NewMapper(groupWidth, minGroups)
	if err != nil {
		return err
	}
	store, err := storage.NewStore(config.Storage.Root, mapper)
	if err != nil {
		return err
	}
	if err := store.EnsureRoot(); err != nil {
		return err
	}

	lookuper, err := lookup.NewMysqlLookuper(logger, repoModel)
	if err != nil {
		return err
	}
	archiveFetcher, err := fetcher.NewArchiveFetcher(logger, config, store.TmpDir())
	if err != nil {
		return err
	}
	d, err := downloader.FactoryDownloader("v2", logger, config, lookuper, archiveFetcher, store)
	if err != nil {
		return err
	}

	consumer := kafka.NewConsumer(config, logger, config.Kafka.Topics.Request, "download-consumer-group")

	// Register handler for download request messages
	consumer.RegisterHandler("download", func(data []byte) error {
		var req model.DownloadRequestMessage
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("failed to unmarshal download request: %w", err)
		}

		// Results are published by the v2 downloader, so a failed download
		// is reported there and must not requeue the message.
		d.Download(ctx, []int64{req.ID})
		return nil
	})

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Download consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Download consumer started successfully")
	return nil
}

// startRepoConsumer keeps the local metadata mirror current from the repo
// topic, batching upserts the way bulk imports arrive.
func startRepoConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, repoModel *model.Repo) {
	consumer := kafka.NewConsumer(config, logger, "repos", "repo-consumer-group")

	// Channel for collecting messages in batches
	batchSize := 100
	batchTimeout := 5 * time.Second

	// Channel to collect messages for batch processing
	messages := make(chan model.RepoMessage, batchSize*2)

	// Batch processor
	go processBatchedRepos(ctx, messages, batchSize, batchTimeout, logger, repoModel)

	// Register handler for repo messages
	consumer.RegisterHandler("repo", func(data []byte) error {
		var repoMsg model.RepoMessage
		if err := json.Unmarshal(data, &repoMsg); err != nil {
			return fmt.Errorf("failed to unmarshal repo message: %w", err)
		}

		// Send to batch channel instead of processing individually
		select {
		case messages <- repoMsg:
			// Message added to batch
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	// Start consumer in a goroutine
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Repo consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Repository metadata consumer started successfully")
}

// repoUpserter is satisfied by model.Repo.
type repoUpserter interface {
	Create(user, name, defaultBranch, cloneUrl string, id int64) error
	CreateBatch(messages []model.RepoMessage) error
}

// processBatchedRepos flushes batches of metadata rows to the database.
func processBatchedRepos(ctx context.Context, messages <-chan model.RepoMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, repoModel repoUpserter) {

	var batch []model.RepoMessage
	timer := time.NewTimer(batchTimeout)

	for {
		select {
		case <-ctx.Done():
			// Process remaining messages before exiting
			if len(batch) > 0 {
				processSingleBatch(ctx, batch, logger, repoModel)
			}
			return

		case msg := <-messages:
			batch = append(batch, msg)

			// Process batch when it reaches the desired size
			if len(batch) >= batchSize {
				processSingleBatch(ctx, batch, logger, repoModel)
				batch = nil // Reset batch
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			// Process batch on timeout if there are any messages
			if len(batch) > 0 {
				processSingleBatch(ctx, batch, logger, repoModel)
				batch = nil // Reset batch
			}
			timer.Reset(batchTimeout)
		}
	}
}

// Process a single batch of repository rows
func processSingleBatch(ctx context.Context, batch []model.RepoMessage, logger log.Logger, repoModel repoUpserter) {
	if len(batch) == 0 {
		return
	}

	logger.Info(ctx, "Processing batch of %d repository rows", len(batch))

	// Use transactions for batch upserts
	err := repoModel.CreateBatch(batch)
	if err == nil {
		logger.Info(ctx, "Successfully saved batch of %d repository rows", len(batch))
		return
	}

	// One bad row fails the whole transaction; retry row by row so the
	// rest of the batch still lands.
	logger.Warn(ctx, "Batch upsert failed, retrying rows individually: %v", err)
	for _, msg := range batch {
		if errRow := repoModel.Create(msg.User, msg.Name, msg.DefaultBranch, msg.CloneUrl, msg.ID); errRow != nil {
			logger.Error(ctx, "Failed to save repo row id=%d: %v", msg.ID, errRow)
		}
	}
}
