package postgres

import (
	"context"
	"fmt"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// SessionStore implements storage.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)

// Insert adds a new session. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Insert(ctx context.Context, session *domain.ScanSession) error {
	if session == nil || session.SessionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO scan_sessions (
			session_id, symbols, start_time, end_time, min_shares, min_value, trades_seen, whales_found, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		session.SessionID,
		session.Symbols,
		session.StartTime,
		session.EndTime,
		session.MinShares,
		session.MinValue,
		session.TradesSeen,
		session.WhalesFound,
		session.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scan session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (*domain.ScanSession, error) {
	query := `
		SELECT session_id, symbols, start_time, end_time, min_shares, min_value, trades_seen, whales_found, created_at
		FROM scan_sessions
		WHERE session_id = $1
	`

	var session domain.ScanSession
	err := s.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.SessionID,
		&session.Symbols,
		&session.StartTime,
		&session.EndTime,
		&session.MinShares,
		&session.MinValue,
		&session.TradesSeen,
		&session.WhalesFound,
		&session.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scan session by id: %w", err)
	}
	return &session, nil
}

// GetByTimeRange retrieves sessions created within [start, end] (inclusive),
// ordered by created_at ASC.
func (s *SessionStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.ScanSession, error) {
	query := `
		SELECT session_id, symbols, start_time, end_time, min_shares, min_value, trades_seen, whales_found, created_at
		FROM scan_sessions
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC, session_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get scan sessions by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.ScanSession
	for rows.Next() {
		var session domain.ScanSession
		if err := rows.Scan(
			&session.SessionID,
			&session.Symbols,
			&session.StartTime,
			&session.EndTime,
			&session.MinShares,
			&session.MinValue,
			&session.TradesSeen,
			&session.WhalesFound,
			&session.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		result = append(result, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return result, nil
}
