package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	githubapi "github.com/thep200/repo-downloader/internal/github_api"
	"github.com/thep200/repo-downloader/pkg/log"
)

// GithubLookuper resolves identifiers straight against the GitHub API, for
// identifiers the local mirror has no row for yet.
type GithubLookuper struct {
	Logger log.Logger
	Caller *githubapi.Caller
}

func NewGithubLookuper(logger log.Logger, caller *githubapi.Caller) (*GithubLookuper, error) {
	return &GithubLookuper{
		Logger: logger,
		Caller: caller,
	}, nil
}

func (l *GithubLookuper) Lookup(ctx context.Context, id int64) (*Info, error) {
	resp, err := l.Caller.CallRepoByID(ctx, id)
	if err != nil {
		if errors.Is(err, githubapi.ErrRepoNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, err
	}

	user := resp.Owner.Login
	name := resp.Name
	if user == "" || name == "" {
		// Some responses only fill full_name.
		if parts := strings.SplitN(resp.FullName, "/", 2); len(parts) == 2 {
			user, name = parts[0], parts[1]
		}
	}

	return &Info{
		ID:            resp.Id,
		User:          user,
		Name:          name,
		DefaultBranch: resp.DefaultBranch,
		CloneUrl:      resp.CloneUrl,
	}, nil
}
