package clickhouse

import (
	"context"
	"fmt"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// SentimentStore implements storage.SentimentStore using ClickHouse.
type SentimentStore struct {
	conn *Conn
}

// NewSentimentStore creates a new SentimentStore.
func NewSentimentStore(conn *Conn) *SentimentStore {
	return &SentimentStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SentimentStore = (*SentimentStore)(nil)

// InsertBulk adds per-symbol sentiment rows for a session.
// Fails entire batch on duplicate (session_id, symbol).
func (s *SentimentStore) InsertBulk(ctx context.Context, sessionID string, rows []*domain.TickerSentiment) error {
	if len(rows) == 0 {
		return nil
	}
	if sessionID == "" {
		return storage.ErrInvalidInput
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Symbol == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.Symbol]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.Symbol] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range rows {
		exists, err := s.exists(ctx, sessionID, r.Symbol)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO sentiment_snapshots (
			session_id, symbol, buy_count, buy_value, sell_count, sell_value, net_flow, label
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			sessionID, r.Symbol,
			uint32(r.BuyCount), r.BuyValue,
			uint32(r.SellCount), r.SellValue,
			r.NetFlow(), string(r.Label()),
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

func (s *SentimentStore) exists(ctx context.Context, sessionID, symbol string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		"SELECT count() FROM sentiment_snapshots WHERE session_id = ? AND symbol = ?",
		sessionID, symbol,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetBySessionID retrieves all sentiment rows for a session, ordered by symbol ASC.
func (s *SentimentStore) GetBySessionID(ctx context.Context, sessionID string) ([]*domain.TickerSentiment, error) {
	query := `
		SELECT symbol, buy_count, buy_value, sell_count, sell_value
		FROM sentiment_snapshots
		WHERE session_id = ?
		ORDER BY symbol ASC
	`

	rows, err := s.conn.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query sentiment snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.TickerSentiment
	for rows.Next() {
		var r domain.TickerSentiment
		var buyCount, sellCount uint32
		if err := rows.Scan(&r.Symbol, &buyCount, &r.BuyValue, &sellCount, &r.SellValue); err != nil {
			return nil, fmt.Errorf("scan sentiment row: %w", err)
		}
		r.BuyCount = int(buyCount)
		r.SellCount = int(sellCount)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentiment rows: %w", err)
	}
	return result, nil
}
