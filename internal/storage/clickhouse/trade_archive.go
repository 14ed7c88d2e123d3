package clickhouse

import (
	"context"
	"fmt"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// TradeArchive implements storage.TradeArchive using ClickHouse.
// The backing table is a plain MergeTree; duplicate rows are tolerated
// and deduplicated at query time by the caller if needed.
type TradeArchive struct {
	conn *Conn
}

// NewTradeArchive creates a new TradeArchive.
func NewTradeArchive(conn *Conn) *TradeArchive {
	return &TradeArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeArchive = (*TradeArchive)(nil)

// InsertBulk appends raw trades.
func (s *TradeArchive) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	for _, t := range trades {
		if t == nil || t.Symbol == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_archive (
			symbol, trade_id, price, size, timestamp_ms, exchange, tape, conditions
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		err = batch.Append(
			t.Symbol, t.ID, t.Price, uint64(t.Size),
			uint64(t.Timestamp), t.Exchange, t.Tape, t.Conditions,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves archived trades for a symbol within [start, end]
// (inclusive), ordered by timestamp ASC.
func (s *TradeArchive) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Trade, error) {
	query := `
		SELECT symbol, trade_id, price, size, timestamp_ms, exchange, tape, conditions
		FROM trade_archive
		WHERE symbol = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, trade_id ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query trade archive: %w", err)
	}
	defer rows.Close()

	var result []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		var size, timestamp uint64
		if err := rows.Scan(
			&t.Symbol, &t.ID, &t.Price, &size,
			&timestamp, &t.Exchange, &t.Tape, &t.Conditions,
		); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		t.Size = int64(size)
		t.Timestamp = int64(timestamp)
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return result, nil
}
