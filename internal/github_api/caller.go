// Package githubapi provides a caller for the GitHub REST API, used to
// resolve repository metadata by numeric identifier when the local metadata
// database has no row for it. The caller only performs the request; it does
// not wait out rate limits or retry.
package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/pkg/log"
)

type Caller struct {
	Logger log.Logger
	Config *cfg.Config
}

func NewCaller(logger log.Logger, config *cfg.Config) *Caller {
	return &Caller{
		Logger: logger,
		Config: config,
	}
}

// HandleRateLimit inspects the rate limit headers of a response and turns an
// exhausted quota into an error the caller can surface.
func (c *Caller) HandleRateLimit(ctx context.Context, resp *http.Response) (bool, error) {
	rateRemaining := resp.Header.Get("X-RateLimit-Remaining")

	if resp.StatusCode == http.StatusForbidden && rateRemaining == "0" {
		resetTime := resp.Header.Get("X-RateLimit-Reset")
		c.Logger.Warn(ctx, "Rate limit hit! GitHub API quota exhausted, reset at %s", resetTime)
		return true, fmt.Errorf("github api rate limit exhausted, reset at %s", resetTime)
	}

	return false, nil
}

// CallRepoByID resolves a repository by its numeric identifier via the
// /repositories/{id} endpoint.
func (c *Caller) CallRepoByID(ctx context.Context, id int64) (*GithubAPIResponse, error) {
	baseUrl := strings.TrimSuffix(c.Config.GithubApi.ApiUrl, "/")
	fullUrl := fmt.Sprintf("%s/repositories/%d", baseUrl, id)
	c.Logger.Debug(ctx, "Calling GitHub API: %s", fullUrl)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		c.Logger.Error(ctx, "Cannot request: %v", err)
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")

	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", c.Config.GithubApi.AccessToken))
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		c.Logger.Error(ctx, "cannot send request: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	isRateLimited, rateLimitErr := c.HandleRateLimit(ctx, resp)
	if isRateLimited {
		return nil, rateLimitErr
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRepoNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot received response: %v", resp.Status)
	}

	rawResponse := &GithubAPIResponse{}
	if err := json.NewDecoder(resp.Body).Decode(rawResponse); err != nil {
		return nil, err
	}

	return rawResponse, nil
}
