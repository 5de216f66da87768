package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/internal/lookup"
	"github.com/thep200/repo-downloader/pkg/log"
)

type ArchiveFetcher struct {
	Logger log.Logger
	Config *cfg.Config
	TmpDir string
	client *http.Client
}

func NewArchiveFetcher(logger log.Logger, config *cfg.Config, tmpDir string) (*ArchiveFetcher, error) {
	if tmpDir == "" {
		return nil, fmt.Errorf("staging directory must not be empty")
	}
	timeout := time.Duration(config.Fetch.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ArchiveFetcher{
		Logger: logger,
		Config: config,
		TmpDir: tmpDir,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (f *ArchiveFetcher) Fetch(ctx context.Context, info *lookup.Info, dest string) error {
	populated, err := isPopulated(dest)
	if err != nil {
		return err
	}
	if populated {
		return fmt.Errorf("%w: %s", ErrExists, dest)
	}

	branch := info.DefaultBranch
	if branch == "" {
		branch = "master"
	}

	zipFile, err := f.download(ctx, f.archiveUrl(info, branch), false)
	if err == errArchiveMissing {
		// The assumed default branch has no archive; the zipball endpoint
		// resolves whatever the real default is.
		f.Logger.Warn(ctx, "No zip archive for branch %s of %s/%s, falling back to zipball", branch, info.User, info.Name)
		zipFile, err = f.download(ctx, f.zipballUrl(info), true)
	}
	if err != nil {
		return fmt.Errorf("failed to download archive for id=%d: %w", info.ID, err)
	}
	defer os.Remove(zipFile)

	extractDir, err := os.MkdirTemp(f.TmpDir, "extract-")
	if err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer os.RemoveAll(extractDir)

	rootDir, err := unzip(zipFile, extractDir)
	if err != nil {
		return fmt.Errorf("failed to extract archive for id=%d: %w", info.ID, err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}

	// An empty placeholder directory from a previous interrupted run would
	// make the rename fail, so clear it first.
	if err := removeIfEmpty(dest); err != nil {
		return err
	}
	if err := os.Rename(rootDir, dest); err != nil {
		return fmt.Errorf("failed to move archive contents into place: %w", err)
	}

	f.Logger.Info(ctx, "Downloaded id=%d (%s/%s) to %s", info.ID, info.User, info.Name, dest)
	return nil
}

func (f *ArchiveFetcher) archiveUrl(info *lookup.Info, branch string) string {
	url := f.Config.Fetch.ArchiveUrlTemplate
	url = strings.ReplaceAll(url, "{user}", info.User)
	url = strings.ReplaceAll(url, "{repo}", info.Name)
	url = strings.ReplaceAll(url, "{branch}", branch)
	return url
}

func (f *ArchiveFetcher) zipballUrl(info *lookup.Info) string {
	url := f.Config.Fetch.ZipballUrlTemplate
	url = strings.ReplaceAll(url, "{user}", info.User)
	url = strings.ReplaceAll(url, "{repo}", info.Name)
	return url
}

var errArchiveMissing = fmt.Errorf("archive not found")

// download streams url into a temporary zip file and returns its path.
func (f *ArchiveFetcher) download(ctx context.Context, url string, authed bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if authed && f.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", f.Config.GithubApi.AccessToken))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", errArchiveMissing
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response downloading %s: %s", url, resp.Status)
	}

	out, err := os.CreateTemp(f.TmpDir, "archive-*.zip")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func isPopulated(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

func removeIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return os.Remove(dir)
	}
	return nil
}
