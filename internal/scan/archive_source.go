package scan

import (
	"context"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// ArchiveSource replays archived raw trades as scan input, so past windows
// can be rescanned with different thresholds without refetching from the
// provider.
type ArchiveSource struct {
	archive storage.TradeArchive
}

// Compile-time check that ArchiveSource implements TradeSource.
var _ TradeSource = (*ArchiveSource)(nil)

// NewArchiveSource creates a trade source backed by the raw trade archive.
func NewArchiveSource(archive storage.TradeArchive) *ArchiveSource {
	return &ArchiveSource{archive: archive}
}

// Trades returns archived trades within [from, to] (inclusive, ms), ordered
// by timestamp ASC.
func (s *ArchiveSource) Trades(ctx context.Context, symbol string, from, to int64) ([]*domain.Trade, error) {
	return s.archive.GetByTimeRange(ctx, symbol, from, to)
}
