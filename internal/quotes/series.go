package quotes

import (
	"sort"

	"whaleflow/internal/domain"
)

// Series is a preloaded, timestamp-ordered quote history for one symbol.
// Batch scans fetch a symbol's quotes once and resolve every trade against
// the same series instead of hitting the source per trade.
type Series struct {
	symbol   string
	quotes   []*domain.Quote
	lookback int64 // ms
}

// NewSeries builds a series from quotes, sorting them by timestamp ASC.
// lookbackMs bounds how stale a resolved quote may be; zero disables the
// staleness check.
func NewSeries(symbol string, qs []*domain.Quote, lookbackMs int64) *Series {
	sorted := make([]*domain.Quote, len(qs))
	copy(sorted, qs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return &Series{symbol: symbol, quotes: sorted, lookback: lookbackMs}
}

// Len returns the number of quotes in the series.
func (s *Series) Len() int { return len(s.quotes) }

// At returns the latest quote with timestamp <= at, or ErrQuoteUnavailable
// when none exists or the latest one is older than the lookback window.
func (s *Series) At(at int64) (*domain.Quote, error) {
	// First index with timestamp > at; the candidate is the one before it.
	idx := sort.Search(len(s.quotes), func(i int) bool {
		return s.quotes[i].Timestamp > at
	})
	if idx == 0 {
		return nil, ErrQuoteUnavailable
	}

	q := s.quotes[idx-1]
	if s.lookback > 0 && at-q.Timestamp > s.lookback {
		return nil, ErrQuoteUnavailable
	}

	out := *q
	return &out, nil
}
