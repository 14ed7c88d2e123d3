package memory

import (
	"context"
	"sort"
	"sync"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// TradeArchive is an in-memory implementation of storage.TradeArchive.
// Unlike the keyed stores it is append-only without duplicate detection,
// matching the columnar backend it stands in for.
type TradeArchive struct {
	mu     sync.RWMutex
	trades []*domain.Trade
}

// NewTradeArchive creates a new in-memory trade archive.
func NewTradeArchive() *TradeArchive {
	return &TradeArchive{}
}

// InsertBulk appends raw trades.
func (a *TradeArchive) InsertBulk(_ context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, t := range trades {
		if t == nil || t.Symbol == "" {
			return storage.ErrInvalidInput
		}
		copy := *t
		copy.Conditions = append([]string(nil), t.Conditions...)
		a.trades = append(a.trades, &copy)
	}

	return nil
}

// GetByTimeRange retrieves archived trades for a symbol within [start, end]
// (inclusive), ordered by timestamp ASC.
func (a *TradeArchive) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.Trade, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range a.trades {
		if t.Symbol == symbol && t.Timestamp >= start && t.Timestamp <= end {
			copy := *t
			copy.Conditions = append([]string(nil), t.Conditions...)
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Compile-time interface check.
var _ storage.TradeArchive = (*TradeArchive)(nil)
