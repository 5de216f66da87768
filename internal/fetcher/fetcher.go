// Package fetcher materializes repository contents at a destination
// directory. The archive fetcher downloads the hosting platform's zip
// archive, extracts it into a staging area and renames the result into
// place, so a destination is only ever observed empty or complete.
package fetcher

import (
	"context"
	"errors"

	"github.com/thep200/repo-downloader/internal/lookup"
)

// ErrExists reports that the destination is already populated. Callers
// treat it as "already downloaded", not as a failure.
var ErrExists = errors.New("destination already populated")

type Fetcher interface {
	Fetch(ctx context.Context, info *lookup.Info, dest string) error
}
