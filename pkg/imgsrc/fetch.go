// Package imgsrc resolves overlay element sources to decoded images.
//
// A source is either an http(s) URL or a local file path. Remote fetches
// retry transient failures with exponential backoff and cache the fetched
// bytes, so repeated composite runs over the same kit hit the network once.
// The decoder also records every source's native pixel dimensions, giving
// the interactive editor a synchronous size lookup for hit-testing.
package imgsrc

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/brandkit/pkg/cache"
	"github.com/matzehuels/brandkit/pkg/errors"
)

const (
	// defaultFetchTimeout bounds one HTTP fetch attempt.
	defaultFetchTimeout = 15 * time.Second

	// maxSourceBytes caps the size of a fetched overlay source.
	maxSourceBytes = 32 << 20 // 32 MiB

	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// Fetcher resolves source references to raw bytes.
type Fetcher struct {
	client *http.Client
	cache  cache.Cache
	logger *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client used for remote sources.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithFetchLogger sets the logger for fetch diagnostics.
func WithFetchLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a fetcher backed by the given byte cache.
// A nil cache disables caching.
func NewFetcher(c cache.Cache, opts ...FetcherOption) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	f := &Fetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
		cache:  c,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the raw bytes of a source. Remote sources are cached;
// local paths are read directly every time.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if err := errors.ValidateSourceURL(src); err != nil {
		return nil, err
	}

	if isRemote(src) {
		return f.fetchRemote(ctx, src)
	}
	return f.readLocal(src)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func (f *Fetcher) readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "source file %q", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "read source file %q", path)
	}
	return data, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	key := cache.SourceKey(url)
	if data, hit, err := f.cache.Get(ctx, key); err == nil && hit {
		f.logger.Debug("source cache hit", "url", url, "bytes", len(data))
		return data, nil
	}

	var data []byte
	err := Retry(ctx, retryAttempts, retryDelay, func() error {
		var attemptErr error
		data, attemptErr = f.doFetch(ctx, url)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}

	_ = f.cache.Set(ctx, key, data)
	return data, nil
}

// doFetch performs one HTTP attempt. 5xx responses and transport errors
// are retryable; 4xx responses are not.
func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "build request for %q", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "fetch %q", url)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "fetch %q: status %d", url, resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeNetwork, "fetch %q: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read body of %q", url)}
	}
	if len(data) > maxSourceBytes {
		return nil, errors.New(errors.ErrCodeInvalidSource, "source %q exceeds %d bytes", url, maxSourceBytes)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSource, "source %q is empty", url)
	}
	return data, nil
}
