// Package downloader orchestrates repository downloads: for each identifier
// it looks up the metadata, maps the identifier to its storage path and
// hands the fetch to the archive fetcher. Identifiers whose directories are
// already populated are skipped.
package downloader

import "context"

type Downloader interface {
	Download(ctx context.Context, ids []int64) Stats
}

// Stats summarizes one download run.
type Stats struct {
	Downloaded int
	Skipped    int
	Failed     int
}

func (s Stats) Ok() bool {
	return s.Failed == 0
}
