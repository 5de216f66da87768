// Package lookup resolves repository identifiers to the metadata needed to
// download them: owner, name, default branch and clone URL. Two sources are
// provided, the local metadata database and the GitHub API.
package lookup

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("repository identifier not found")

// Info is the metadata a download needs for one repository.
type Info struct {
	ID            int64
	User          string
	Name          string
	DefaultBranch string
	CloneUrl      string
}

type Lookuper interface {
	Lookup(ctx context.Context, id int64) (*Info, error)
}
