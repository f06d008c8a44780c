package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultFetchRetries = 3
	maxPageBytes        = 32 << 20
	userAgent           = "paddock/1.0 (race-history aggregation)"
)

// Fetcher downloads documents over HTTP with bounded retries.
type Fetcher struct {
	client *retryablehttp.Client
	logger logger.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout bounds a single attempt.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.HTTPClient.Timeout = d
		}
	}
}

// WithFetchRetries sets the number of retries after the first attempt.
func WithFetchRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.client.RetryMax = n
		}
	}
}

// WithRetryWait sets the backoff bounds between attempts.
func WithRetryWait(minWait, maxWait time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if minWait > 0 && maxWait >= minWait {
			f.client.RetryWaitMin = minWait
			f.client.RetryWaitMax = maxWait
		}
	}
}

// WithFetchLogger sets the logger used for attempts and retries.
func WithFetchLogger(l logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher builds a Fetcher. Without options it waits up to ten seconds
// per attempt and retries three times.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = defaultFetchTimeout
	client.RetryMax = defaultFetchRetries

	f := &Fetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get()
	}

	client.Logger = leveledLogger{l: f.logger.Named("fetch")}
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			metrics.RecordFetchAttempt("retry")
			f.logger.Warn(req.Context(), "retrying fetch",
				logger.String("url", req.URL.String()),
				logger.Int("attempt", attempt),
			)
		}
	}
	return f
}

// Fetch returns the body of url. Non-2xx responses after the final attempt
// are errors wrapping ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.RecordFetchAttempt("failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFetchAttempt("failed")
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		metrics.RecordFetchAttempt("failed")
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrFetch, url, err)
	}

	elapsed := time.Since(start)
	metrics.RecordFetchAttempt("ok")
	metrics.RecordFetchLatency(elapsed)
	f.logger.Info(ctx, "fetched page",
		logger.String("url", url),
		logger.Int("bytes", len(body)),
		logger.Duration("elapsed", elapsed),
	)
	return body, nil
}

// leveledLogger routes retryablehttp's own logging into our logger.
type leveledLogger struct {
	l logger.Logger
}

func (a leveledLogger) Error(msg string, kv ...interface{}) {
	a.l.Error(context.Background(), msg, kvFields(kv)...)
}

func (a leveledLogger) Info(msg string, kv ...interface{}) {
	a.l.Info(context.Background(), msg, kvFields(kv)...)
}

func (a leveledLogger) Debug(msg string, kv ...interface{}) {
	a.l.Debug(context.Background(), msg, kvFields(kv)...)
}

func (a leveledLogger) Warn(msg string, kv ...interface{}) {
	a.l.Warn(context.Background(), msg, kvFields(kv)...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
