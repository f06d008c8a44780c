package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/paddock/internal/adapters/ingest"
	"github.com/okian/paddock/pkg/logger"
)

// client issues probe requests against one service.
type client struct {
	base    string
	fetcher *ingest.Fetcher
	http    *http.Client
}

func newClient(config *Config) *client {
	return &client{
		base: config.BaseURL,
		fetcher: ingest.NewFetcher(
			ingest.WithFetchTimeout(config.Timeout),
			ingest.WithFetchRetries(config.Retries),
			ingest.WithFetchLogger(logger.Named("probe")),
		),
		http: &http.Client{Timeout: config.Timeout},
	}
}

func rangeQuery(from, to int) url.Values {
	return url.Values{"from": {strconv.Itoa(from)}, "to": {strconv.Itoa(to)}}
}

func (c *client) url(path string, q url.Values) string {
	if len(q) == 0 {
		return c.base + path
	}
	return c.base + path + "?" + q.Encode()
}

// raw fetches path and returns the body. Non-2xx responses are errors.
func (c *client) raw(ctx context.Context, path string, q url.Values) ([]byte, error) {
	return c.fetcher.Fetch(ctx, c.url(path, q))
}

// getJSON fetches path and decodes the JSON body into v.
func (c *client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	body, err := c.raw(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// status fetches path once, without retries, and returns the status code and
// the decoded error code if the body carries one.
func (c *client) status(ctx context.Context, path string, q url.Values) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	var e struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(body, &e)
	return resp.StatusCode, e.Code, nil
}
