package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// ClassifiedTradeStore implements storage.ClassifiedTradeStore using PostgreSQL.
type ClassifiedTradeStore struct {
	pool *Pool
}

// NewClassifiedTradeStore creates a new ClassifiedTradeStore.
func NewClassifiedTradeStore(pool *Pool) *ClassifiedTradeStore {
	return &ClassifiedTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClassifiedTradeStore = (*ClassifiedTradeStore)(nil)

const insertWhaleTradeQuery = `
	INSERT INTO whale_trades (
		session_id, symbol, trade_id, price, size, timestamp_ms, exchange, tape, conditions,
		bid_price, ask_price, quote_timestamp_ms, direction, confidence
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

func whaleTradeArgs(sessionID string, t *domain.ClassifiedTrade) []interface{} {
	var bidPrice, askPrice *float64
	var quoteTs *int64
	if t.Quote != nil {
		bidPrice = &t.Quote.BidPrice
		askPrice = &t.Quote.AskPrice
		quoteTs = &t.Quote.Timestamp
	}
	return []interface{}{
		sessionID,
		t.Trade.Symbol,
		t.Trade.ID,
		t.Trade.Price,
		t.Trade.Size,
		t.Trade.Timestamp,
		t.Trade.Exchange,
		t.Trade.Tape,
		t.Trade.Conditions,
		bidPrice,
		askPrice,
		quoteTs,
		string(t.Direction),
		t.Confidence,
	}
}

// Insert adds a classified whale trade for a session.
// Returns ErrDuplicateKey if (session_id, symbol, trade_id) exists.
func (s *ClassifiedTradeStore) Insert(ctx context.Context, sessionID string, t *domain.ClassifiedTrade) error {
	if t == nil || sessionID == "" || t.Trade.Symbol == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertWhaleTradeQuery, whaleTradeArgs(sessionID, t)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert whale trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *ClassifiedTradeStore) InsertBulk(ctx context.Context, sessionID string, trades []*domain.ClassifiedTrade) error {
	if len(trades) == 0 {
		return nil
	}
	if sessionID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.Trade.Symbol == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, insertWhaleTradeQuery, whaleTradeArgs(sessionID, t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert whale trade in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectWhaleTradeColumns = `
	symbol, trade_id, price, size, timestamp_ms, exchange, tape, conditions,
	bid_price, ask_price, quote_timestamp_ms, direction, confidence
`

func scanWhaleTrade(rows pgx.Rows) (*domain.ClassifiedTrade, error) {
	var t domain.ClassifiedTrade
	var direction string
	var bidPrice, askPrice *float64
	var quoteTs *int64

	err := rows.Scan(
		&t.Trade.Symbol,
		&t.Trade.ID,
		&t.Trade.Price,
		&t.Trade.Size,
		&t.Trade.Timestamp,
		&t.Trade.Exchange,
		&t.Trade.Tape,
		&t.Trade.Conditions,
		&bidPrice,
		&askPrice,
		&quoteTs,
		&direction,
		&t.Confidence,
	)
	if err != nil {
		return nil, err
	}

	t.Direction = domain.Direction(direction)
	if bidPrice != nil && askPrice != nil && quoteTs != nil {
		t.Quote = &domain.Quote{
			Symbol:    t.Trade.Symbol,
			BidPrice:  *bidPrice,
			AskPrice:  *askPrice,
			Timestamp: *quoteTs,
		}
	}
	return &t, nil
}

func (s *ClassifiedTradeStore) query(ctx context.Context, query string, args ...interface{}) ([]*domain.ClassifiedTrade, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query whale trades: %w", err)
	}
	defer rows.Close()

	var result []*domain.ClassifiedTrade
	for rows.Next() {
		t, err := scanWhaleTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan whale trade row: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate whale trade rows: %w", err)
	}
	return result, nil
}

// GetBySessionID retrieves all trades for a session, ordered by timestamp ASC.
func (s *ClassifiedTradeStore) GetBySessionID(ctx context.Context, sessionID string) ([]*domain.ClassifiedTrade, error) {
	query := `
		SELECT ` + selectWhaleTradeColumns + `
		FROM whale_trades
		WHERE session_id = $1
		ORDER BY timestamp_ms ASC, trade_id ASC
	`
	return s.query(ctx, query, sessionID)
}

// GetBySymbol retrieves trades for a session and symbol, ordered by timestamp ASC.
func (s *ClassifiedTradeStore) GetBySymbol(ctx context.Context, sessionID, symbol string) ([]*domain.ClassifiedTrade, error) {
	query := `
		SELECT ` + selectWhaleTradeColumns + `
		FROM whale_trades
		WHERE session_id = $1 AND symbol = $2
		ORDER BY timestamp_ms ASC, trade_id ASC
	`
	return s.query(ctx, query, sessionID, symbol)
}
