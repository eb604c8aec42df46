package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jacklau/reposcope/internal/retry"
)

// ErrFetch indicates a network or HTTP-level failure while fetching a page
// or raw file. Callers can distinguish it from parse failures with errors.Is.
var ErrFetch = errors.New("fetch failed")

const (
	// userAgent identifies us to github.com; requests without one are rejected.
	userAgent = "reposcope/1.0 (+https://github.com/jacklau/reposcope)"

	// defaultTimeout bounds a single page fetch.
	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a response we read (raw READMEs can be huge).
	maxBodySize = 2 << 20 // 2 MiB
)

// Fetcher performs raw HTTP GETs against github.com and
// raw.githubusercontent.com with retries on transient failures.
type Fetcher struct {
	client      *http.Client
	logger      *slog.Logger
	maxAttempts int
}

// NewFetcher creates a Fetcher. A zero timeout uses the default, a nil
// logger uses slog.Default.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
		maxAttempts: retry.DefaultMaxAttempts,
	}
}

// WithMaxAttempts overrides the retry budget and returns the fetcher.
func (f *Fetcher) WithMaxAttempts(n int) *Fetcher {
	if n > 0 {
		f.maxAttempts = n
	}
	return f
}

// Fetch GETs the URL and returns the response body. Transient failures
// (network errors, 5xx, rate limiting with a short reset) are retried with
// backoff; everything else fails fast. All failures wrap ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, f.maxAttempts, func() error {
		b, retryable, err := f.fetchOnce(ctx, url)
		if err != nil {
			if !retryable {
				return retry.Permanent(err)
			}
			f.logger.Debug("fetch attempt failed", "url", url, "error", err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetch, url, err)
	}

	return body, nil
}

// fetchOnce performs a single GET. The second return reports whether the
// failure is worth retrying.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, true, fmt.Errorf("reading body: %w", err)
		}
		return body, false, nil

	case IsRateLimited(resp):
		if delay, derr := RetryDelay(resp); derr == nil && delay <= defaultTimeout {
			f.logger.Warn("rate limited, backing off", "url", url, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(delay):
			}
			return nil, true, fmt.Errorf("rate limited (status %d)", resp.StatusCode)
		}
		return nil, false, fmt.Errorf("rate limited (status %d)", resp.StatusCode)

	case IsServerError(resp):
		return nil, true, fmt.Errorf("server error (status %d)", resp.StatusCode)

	default:
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}
