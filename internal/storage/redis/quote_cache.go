// Package redis provides a Redis-backed quote cache for deployments where
// the live feed and the monitor run in separate processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"whaleflow/internal/domain"
	"whaleflow/internal/quotes"
)

// DefaultQuoteTTL expires quotes that have not been refreshed. A stale
// entry would fail the monitor's staleness check anyway.
const DefaultQuoteTTL = 2 * time.Minute

// putIfNewer stores the quote only when it is not older than the cached one.
// KEYS[1] is the quote key, ARGV[1] the timestamp, ARGV[2] the payload,
// ARGV[3] the TTL in milliseconds.
var putIfNewer = goredis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local ts = cjson.decode(cur)['ts']
	if ts and tonumber(ts) > tonumber(ARGV[1]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// QuoteCache implements quotes.LatestCache on Redis.
type QuoteCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewQuoteCache creates a Redis-backed latest-quote cache.
func NewQuoteCache(client *goredis.Client) *QuoteCache {
	return &QuoteCache{client: client, ttl: DefaultQuoteTTL}
}

// Compile-time interface check.
var _ quotes.LatestCache = (*QuoteCache)(nil)

type cachedQuote struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
	TS  int64   `json:"ts"`
}

func quoteKey(symbol string) string {
	return "quote:latest:" + symbol
}

// Put records a quote as the latest for its symbol. Older quotes arriving
// late do not overwrite newer ones.
func (c *QuoteCache) Put(ctx context.Context, q *domain.Quote) error {
	payload, err := json.Marshal(cachedQuote{Bid: q.BidPrice, Ask: q.AskPrice, TS: q.Timestamp})
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}

	err = putIfNewer.Run(ctx, c.client,
		[]string{quoteKey(q.Symbol)},
		q.Timestamp, payload, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("cache quote for %s: %w", q.Symbol, err)
	}
	return nil
}

// Latest returns the most recent quote for a symbol.
func (c *QuoteCache) Latest(ctx context.Context, symbol string) (*domain.Quote, error) {
	data, err := c.client.Get(ctx, quoteKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, quotes.ErrQuoteUnavailable
		}
		return nil, fmt.Errorf("get cached quote for %s: %w", symbol, err)
	}

	var cached cachedQuote
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cached quote for %s: %w", symbol, err)
	}

	return &domain.Quote{
		Symbol:    symbol,
		BidPrice:  cached.Bid,
		AskPrice:  cached.Ask,
		Timestamp: cached.TS,
	}, nil
}
