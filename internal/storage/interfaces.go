package storage

import (
	"context"

	"whaleflow/internal/domain"
)

// SessionStore provides access to scan_sessions storage.
type SessionStore interface {
	// Insert adds a new session. Returns ErrDuplicateKey if session_id exists.
	Insert(ctx context.Context, s *domain.ScanSession) error

	// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, sessionID string) (*domain.ScanSession, error)

	// GetByTimeRange retrieves sessions created within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ScanSession, error)
}

// ClassifiedTradeStore provides access to whale_trades storage.
type ClassifiedTradeStore interface {
	// Insert adds a classified whale trade for a session.
	// Returns ErrDuplicateKey if (session_id, symbol, trade_id) exists.
	Insert(ctx context.Context, sessionID string, t *domain.ClassifiedTrade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, sessionID string, trades []*domain.ClassifiedTrade) error

	// GetBySessionID retrieves all trades for a session, ordered by timestamp ASC.
	GetBySessionID(ctx context.Context, sessionID string) ([]*domain.ClassifiedTrade, error)

	// GetBySymbol retrieves trades for a session and symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, sessionID, symbol string) ([]*domain.ClassifiedTrade, error)
}

// SentimentStore provides access to sentiment snapshot storage.
type SentimentStore interface {
	// InsertBulk adds per-symbol sentiment rows for a session.
	// Fails entire batch on duplicate (session_id, symbol).
	InsertBulk(ctx context.Context, sessionID string, rows []*domain.TickerSentiment) error

	// GetBySessionID retrieves all sentiment rows for a session, ordered by symbol ASC.
	GetBySessionID(ctx context.Context, sessionID string) ([]*domain.TickerSentiment, error)
}

// TradeArchive provides access to the raw trade archive.
// Backed by a columnar store; writes are batch-oriented.
type TradeArchive interface {
	// InsertBulk appends raw trades. Duplicate rows are tolerated by the backend.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByTimeRange retrieves archived trades for a symbol within [start, end]
	// (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Trade, error)
}
