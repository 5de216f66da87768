package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/internal/downloader"
	"github.com/thep200/repo-downloader/internal/fetcher"
	githubapi "github.com/thep200/repo-downloader/internal/github_api"
	"github.com/thep200/repo-downloader/internal/lookup"
	"github.com/thep200/repo-downloader/internal/model"
	"github.com/thep200/repo-downloader/internal/repopath"
	"github.com/thep200/repo-downloader/internal/storage"
	"github.com/thep200/repo-downloader/pkg/db"
	"github.com/thep200/repo-downloader/pkg/log"
)

func main() {
	ids := flag.String("i", "", "comma-separated repository ids or N-M ranges")
	file := flag.String("f", "", "file containing one repository id per line")
	root := flag.String("r", "", "root of directory where downloads are written (overrides config)")
	source := flag.String("source", "db", "metadata source (db or api)")
	version := flag.String("version", "v1", "downloader version to run (v1 or v2)")
	scan := flag.Bool("scan", false, "list identifiers already present under the root and exit")
	nofrills := flag.Bool("nofrills", false, "plain output without colors")
	flag.Parse()

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *root != "" {
		config.Storage.Root = *root
	}

	// Setup logger
	var logger log.Logger
	if *nofrills {
		logger, _ = log.NewCslLogger()
	} else {
		logger, _ = log.NewColorLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the run on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn(ctx, "Received shutdown signal, stopping after current repository")
		cancel()
	}()

	// Setup the storage tree
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
		logger.Error(ctx, "Invalid storage configuration: %v", err)
		os.Exit(1)
	}
	store, err := storage.NewStore(config.Storage.Root, mapper)
	if err != nil {
		logger.Error(ctx, "Invalid storage configuration: %v", err)
		os.Exit(1)
	}
	if err := store.EnsureRoot(); err != nil {
		logger.Error(ctx, "Failed to prepare storage root: %v", err)
		os.Exit(1)
	}

	if *scan {
		found, err := store.Scan(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to scan %s: %v", store.Root, err)
			os.Exit(1)
		}
		for _, id := range found {
			fmt.Println(id)
		}
		return
	}

	idList, err := collectIDs(*ids, *file)
	if err != nil {
		logger.Error(ctx, "%v", err)
		os.Exit(1)
	}
	if len(idList) == 0 {
		fmt.Println("Need identifiers of repositories to be downloaded: -i ID,ID,N-M or -f file")
		os.Exit(1)
	}

	lookuper, err := buildLookuper(*source, logger, config)
	if err != nil {
		logger.Error(ctx, "%v", err)
		os.Exit(1)
	}

	archiveFetcher, err := fetcher.NewArchiveFetcher(logger, config, store.TmpDir())
	if err != nil {
		logger.Error(ctx, "Failed to create fetcher: %v", err)
		os.Exit(1)
	}

	d, err := downloader.FactoryDownloader(*version, logger, config, lookuper, archiveFetcher, store)
	if err != nil {
		logger.Error(ctx, "%v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting repository downloader")
	stats := d.Download(ctx, idList)
	if !stats.Ok() {
		logger.Error(ctx, "Failed!")
		os.Exit(1)
	}
	logger.Info(ctx, "Successfully!")
}

func buildLookuper(source string, logger log.Logger, config *cfg.Config) (lookup.Lookuper, error) {
	switch source {
	case "db":
		mysql, _ := db.NewMysql(config)
		repoMd, err := model.NewRepo(config, logger, mysql)
		if err != nil {
			return nil, fmt.Errorf("failed to create repo model: %w", err)
		}
		if err := mysql.Migrate(repoMd); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return lookup.NewMysqlLookuper(logger, repoMd)
	case "api":
		return lookup.NewGithubLookuper(logger, githubapi.NewCaller(logger, config))
	default:
		return nil, fmt.Errorf("unsupported metadata source: %s", source)
	}
}

// collectIDs merges the -i list and the -f file into one identifier list,
// in the order given. The -i list accepts single ids and inclusive N-M
// ranges.
func collectIDs(idArg, fileArg string) ([]int64, error) {
	var ids []int64

	if idArg != "" {
		parsed, err := parseIDList(idArg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, parsed...)
	}

	if fileArg != "" {
		parsed, err := readIDFile(fileArg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, parsed...)
	}

	return ids, nil
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.ParseInt(lo, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid identifier range %q", part)
			}
			end, err := strconv.ParseInt(hi, 10, 64)
			if err != nil || end < start {
				return nil, fmt.Errorf("invalid identifier range %q", part)
			}
			for id := start; id <= end; id++ {
				ids = append(ids, id)
			}
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid identifier %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func readIDFile(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open identifier file: %w", err)
	}
	defer f.Close()

	var ids []int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid identifier %q in %s", line, path)
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
