package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/repo-downloader/internal/model"
	"github.com/thep200/repo-downloader/pkg/log"
	"gorm.io/gorm"
)

// MysqlLookuper reads metadata rows from the repos table, the local mirror
// of the external database that assigns the identifiers.
type MysqlLookuper struct {
	Logger log.Logger
	RepoMd *model.Repo
}

func NewMysqlLookuper(logger log.Logger, repoMd *model.Repo) (*MysqlLookuper, error) {
	return &MysqlLookuper{
		Logger: logger,
		RepoMd: repoMd,
	}, nil
}

func (l *MysqlLookuper) Lookup(ctx context.Context, id int64) (*Info, error) {
	repo, err := l.RepoMd.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to look up repo id=%d: %w", id, err)
	}

	return &Info{
		ID:            repo.ID,
		User:          repo.User,
		Name:          repo.Name,
		DefaultBranch: repo.DefaultBranch,
		CloneUrl:      repo.CloneUrl,
	}, nil
}
