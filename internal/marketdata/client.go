// Package marketdata implements the HTTP and WebSocket clients for the
// external stock data provider.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"whaleflow/internal/domain"
	"whaleflow/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://data.alpaca.markets"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultPageLimit   = 10000
)

// Auth header names expected by the provider.
const (
	headerKeyID     = "APCA-API-KEY-ID"
	headerSecretKey = "APCA-API-SECRET-KEY"
)

// ErrRequestFailed is returned for non-retryable HTTP errors.
var ErrRequestFailed = errors.New("market data request failed")

// Client fetches historical trades and quotes over HTTP with bounded
// retry and exponential backoff on transient failures.
type Client struct {
	baseURL     string
	keyID       string
	secretKey   string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	pageLimit   int
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the provider endpoint (used in tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.client.Timeout = d }
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// WithPageLimit sets the per-page row limit for paginated fetches.
func WithPageLimit(n int) ClientOption {
	return func(c *Client) { c.pageLimit = n }
}

// NewClient creates a market data client authenticated with the given keys.
func NewClient(keyID, secretKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		keyID:       keyID,
		secretKey:   secretKey,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		pageLimit:   DefaultPageLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trades returns all trades for a symbol within [from, to] (inclusive, ms),
// ordered by timestamp ASC, following pagination to exhaustion.
func (c *Client) Trades(ctx context.Context, symbol string, from, to int64) ([]*domain.Trade, error) {
	var out []*domain.Trade
	pageToken := ""

	for {
		var page tradesResponse
		if err := c.getPage(ctx, "/v2/stocks/"+symbol+"/trades", from, to, pageToken, &page); err != nil {
			return nil, fmt.Errorf("fetch trades for %s: %w", symbol, err)
		}

		for _, row := range page.Trades {
			out = append(out, row.toDomain(symbol))
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			return out, nil
		}
		pageToken = *page.NextPageToken
	}
}

// Quotes returns all quotes for a symbol within [from, to] (inclusive, ms),
// ordered by timestamp ASC, following pagination to exhaustion.
// Implements quotes.Source.
func (c *Client) Quotes(ctx context.Context, symbol string, from, to int64) ([]*domain.Quote, error) {
	var out []*domain.Quote
	pageToken := ""

	for {
		var page quotesResponse
		if err := c.getPage(ctx, "/v2/stocks/"+symbol+"/quotes", from, to, pageToken, &page); err != nil {
			return nil, fmt.Errorf("fetch quotes for %s: %w", symbol, err)
		}

		for _, row := range page.Quotes {
			out = append(out, row.toDomain(symbol))
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			return out, nil
		}
		pageToken = *page.NextPageToken
	}
}

// getPage performs one paginated GET with retries and exponential backoff.
func (c *Client) getPage(ctx context.Context, path string, from, to int64, pageToken string, result interface{}) error {
	params := url.Values{}
	params.Set("start", time.UnixMilli(from).UTC().Format(time.RFC3339Nano))
	params.Set("end", time.UnixMilli(to).UTC().Format(time.RFC3339Nano))
	params.Set("limit", strconv.Itoa(c.pageLimit))
	if pageToken != "" {
		params.Set("page_token", pageToken)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set(headerKeyID, c.keyID)
		req.Header.Set(headerSecretKey, c.secretKey)

		observability.RecordProviderRequest(endpointFromPath(path))
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
			return nil
		}

		// 429 and 5xx are transient; everything else fails fast.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			continue
		}
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	return fmt.Errorf("retries exhausted: %w", lastErr)
}

// endpointFromPath keeps the metric label low-cardinality: the final path
// segment ("trades", "quotes") rather than the symbol-bearing full path.
func endpointFromPath(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
