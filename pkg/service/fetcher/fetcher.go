package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/Google-eCarbon/ecarbon/pkg/domain/interfaces"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/logging"
	"github.com/Google-eCarbon/ecarbon/pkg/utils/safe"
)

var (
	ErrInvalidURL = goerr.New("invalid target URL")
	ErrTimeout    = goerr.New("target fetch timed out")
	ErrHTTPStatus = goerr.New("target returned error status")
)

const defaultUserAgent = "ecarbon/1.0 (+https://github.com/Google-eCarbon/ecarbon)"

// maxBodySize caps the downloaded document at 10MB.
const maxBodySize = 10 * 1024 * 1024

// HTTPFetcher downloads target pages with retries on transient
// failures. Server errors (5xx) retry, client errors (4xx) do not.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	baseDelay   time.Duration
}

var _ interfaces.Fetcher = (*HTTPFetcher)(nil)

type Option func(*HTTPFetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent overrides the request User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxAttempts sets how many times a transient failure is retried.
func WithMaxAttempts(n int) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the base delay of the exponential backoff.
func WithRetryDelay(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.baseDelay = d
	}
}

func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		userAgent:   defaultUserAgent,
		maxAttempts: 3,
		baseDelay:   time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the document at the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidURL, "unparsable URL", goerr.V("url", target))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", goerr.Wrap(ErrInvalidURL, "unsupported scheme",
			goerr.V("url", target), goerr.V("scheme", u.Scheme))
	}
	if u.Host == "" {
		return "", goerr.Wrap(ErrInvalidURL, "missing host", goerr.V("url", target))
	}

	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			logging.From(ctx).Warn("retrying fetch",
				"url", target, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return "", goerr.Wrap(ctx.Err(), "fetch canceled", goerr.V("url", target))
			case <-time.After(f.baseDelay << (attempt - 1)):
			}
		}

		body, err := f.fetchOnce(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build request", goerr.V("url", target))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		var ne interface{ Timeout() bool }
		if errors.As(err, &ne) && ne.Timeout() {
			return "", goerr.Wrap(ErrTimeout, "request timed out", goerr.V("url", target))
		}
		return "", goerr.Wrap(err, "request failed", goerr.V("url", target))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", goerr.Wrap(ErrHTTPStatus, "unexpected status",
			goerr.V("url", target), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read body", goerr.V("url", target))
	}
	return string(body), nil
}

// retryable reports whether the fetch should be tried again: timeouts,
// transport errors, and 5xx responses qualify.
func retryable(err error) bool {
	if errors.Is(err, ErrInvalidURL) {
		return false
	}
	if errors.Is(err, ErrHTTPStatus) {
		var ge *goerr.Error
		if errors.As(err, &ge) {
			if status, ok := ge.Values()["status"].(int); ok {
				return status >= 500
			}
		}
		return false
	}
	return true
}
