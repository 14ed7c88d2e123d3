package memory

import (
	"context"
	"sort"
	"sync"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// SessionStore is an in-memory implementation of storage.SessionStore.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ScanSession // keyed by session_id
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[string]*domain.ScanSession),
	}
}

// Insert adds a new session. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Insert(_ context.Context, session *domain.ScanSession) error {
	if session == nil || session.SessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[session.SessionID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *session
	copy.Symbols = append([]string(nil), session.Symbols...)
	s.data[session.SessionID] = &copy
	return nil
}

// GetByID retrieves a session by its ID. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(_ context.Context, sessionID string) (*domain.ScanSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.data[sessionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *session
	copy.Symbols = append([]string(nil), session.Symbols...)
	return &copy, nil
}

// GetByTimeRange retrieves sessions created within [start, end] (inclusive),
// ordered by created_at ASC.
func (s *SessionStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.ScanSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ScanSession
	for _, session := range s.data {
		if session.CreatedAt >= start && session.CreatedAt <= end {
			copy := *session
			copy.Symbols = append([]string(nil), session.Symbols...)
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt < result[j].CreatedAt
	})

	return result, nil
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)
