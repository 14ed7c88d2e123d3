package quotes

import (
	"context"
	"sync"

	"whaleflow/internal/domain"
)

// LatestCache stores the most recent quote per symbol for live
// classification. The stream feed writes, the monitor reads.
type LatestCache interface {
	// Put records a quote as the latest for its symbol.
	Put(ctx context.Context, q *domain.Quote) error

	// Latest returns the most recent quote for a symbol.
	// Returns ErrQuoteUnavailable if none has been seen.
	Latest(ctx context.Context, symbol string) (*domain.Quote, error)
}

// MemoryCache is an in-process LatestCache.
type MemoryCache struct {
	mu     sync.RWMutex
	quotes map[string]domain.Quote
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{quotes: make(map[string]domain.Quote)}
}

// Put records a quote as the latest for its symbol. Older quotes arriving
// late do not overwrite newer ones.
func (c *MemoryCache) Put(_ context.Context, q *domain.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.quotes[q.Symbol]; ok && cur.Timestamp > q.Timestamp {
		return nil
	}
	c.quotes[q.Symbol] = *q
	return nil
}

// Latest returns the most recent quote for a symbol.
func (c *MemoryCache) Latest(_ context.Context, symbol string) (*domain.Quote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, ok := c.quotes[symbol]
	if !ok {
		return nil, ErrQuoteUnavailable
	}
	out := q
	return &out, nil
}

var _ LatestCache = (*MemoryCache)(nil)
