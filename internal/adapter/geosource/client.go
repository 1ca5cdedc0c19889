package geosource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/sp-health-heatmap/internal/domain"
	"github.com/couchcryptid/sp-health-heatmap/internal/observability"
)

// maxErrorBody caps how much of a failed response body ends up in the error.
const maxErrorBody = 512

// Client implements domain.GeoSource over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	maxRetries int
	// Backoff between attempts: starts at initialBackoff, doubles, capped at maxBackoff.
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
	metrics        *observability.Metrics
}

// NewClient creates a client for the municipality table at url. A failed
// fetch is retried up to maxRetries times; 4xx responses are not retried.
func NewClient(url string, timeout time.Duration, maxRetries int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
		logger:         logger,
		metrics:        metrics,
	}
}

// Fetch downloads the municipality table and returns the rows whose
// codigo_uf equals regionCode.
func (c *Client) Fetch(ctx context.Context, regionCode int) ([]domain.GeoRecord, error) {
	body, err := c.download(ctx)
	if err != nil {
		return nil, err
	}

	records, stats, err := Parse(bytes.NewReader(body), regionCode)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("municipality table fetched",
		"url", c.url,
		"region_code", regionCode,
		"rows", stats.Rows,
		"kept", stats.Kept,
		"invalid_ibge", stats.InvalidIBGE,
	)
	return records, nil
}

func (c *Client) download(ctx context.Context) ([]byte, error) {
	var body []byte
	op := func() error {
		start := time.Now()
		b, err := c.get(ctx)
		c.metrics.GeoFetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.GeoFetches.WithLabelValues("error").Inc()
			var netErr *domain.NetworkError
			if errors.As(err, &netErr) && netErr.StatusCode >= 400 && netErr.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		c.metrics.GeoFetches.WithLabelValues("success").Inc()
		body = b
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialBackoff
	eb.MaxInterval = c.maxBackoff
	eb.Multiplier = 2
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(c.maxRetries, 0))), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("municipality fetch failed, retrying", "error", err, "url", c.url, "backoff", wait)
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		// A context that ends during a backoff wait surfaces as the bare ctx error.
		var netErr *domain.NetworkError
		if !errors.As(err, &netErr) {
			err = &domain.NetworkError{URL: c.url, Err: err}
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.NetworkError{URL: c.url, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &domain.NetworkError{URL: c.url, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{URL: c.url, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
