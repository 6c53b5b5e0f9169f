// Package fetch downloads dataset files into a local cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

const lockRetryDelay = 50 * time.Millisecond

// StatusError reports a download answered with something other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Fetcher keeps downloaded files under CacheDir, keyed by their relative path.
type Fetcher struct {
	CacheDir string
	Client   *http.Client
	// Token is sent as a bearer token when not empty.
	Token string
}

// New returns a Fetcher with a default HTTP client.
func New(cacheDir, token string) *Fetcher {
	return &Fetcher{
		CacheDir: cacheDir,
		Client:   &http.Client{Timeout: 10 * time.Minute},
		Token:    token,
	}
}

// LocalPath is where rel is stored in the cache.
func (f *Fetcher) LocalPath(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("fetch: path %q escapes the cache", rel)
	}
	return filepath.Join(f.CacheDir, local), nil
}

// Fetch returns the cached copy of rel, downloading it from url first when it is
// not cached yet. Concurrent fetches of the same file, from this or another
// process, download it once.
func (f *Fetcher) Fetch(ctx context.Context, url, rel string) (string, error) {
	path, err := f.LocalPath(rel)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{"url": url, "path": path})

	if cached(path) {
		log.Debug("cache hit")
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return "", fmt.Errorf("lock %s: not acquired", path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logrus.Error(err)
		}
	}()

	// another holder of the lock may have finished the download
	if cached(path) {
		log.Debug("cache hit after lock")
		return path, nil
	}

	log.Info("downloading")
	if err := f.download(ctx, url, path); err != nil {
		return "", err
	}
	return path, nil
}

func cached(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (f *Fetcher) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return writeFileAtomic(path, resp.Body, 0o644)
}

func writeFileAtomic(path string, r io.Reader, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return errors.Join(fmt.Errorf("write temp file: %w", err), tmp.Close())
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Join(fmt.Errorf("chmod temp file: %w", err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
