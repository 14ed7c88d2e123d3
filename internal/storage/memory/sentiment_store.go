package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// SentimentStore is an in-memory implementation of storage.SentimentStore.
type SentimentStore struct {
	mu   sync.RWMutex
	data map[string]*storedSentiment // keyed by session_id|symbol
}

type storedSentiment struct {
	sessionID string
	row       *domain.TickerSentiment
}

// NewSentimentStore creates a new in-memory sentiment store.
func NewSentimentStore() *SentimentStore {
	return &SentimentStore{
		data: make(map[string]*storedSentiment),
	}
}

func sentimentKey(sessionID, symbol string) string {
	return fmt.Sprintf("%s|%s", sessionID, symbol)
}

// InsertBulk adds per-symbol sentiment rows for a session.
// Fails entire batch on duplicate (session_id, symbol).
func (s *SentimentStore) InsertBulk(_ context.Context, sessionID string, rows []*domain.TickerSentiment) error {
	if len(rows) == 0 {
		return nil
	}
	if sessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		if row == nil || row.Symbol == "" {
			return storage.ErrInvalidInput
		}
		key := sentimentKey(sessionID, row.Symbol)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, row := range rows {
		copy := *row
		s.data[sentimentKey(sessionID, row.Symbol)] = &storedSentiment{sessionID: sessionID, row: &copy}
	}

	return nil
}

// GetBySessionID retrieves all sentiment rows for a session, ordered by symbol ASC.
func (s *SentimentStore) GetBySessionID(_ context.Context, sessionID string) ([]*domain.TickerSentiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TickerSentiment
	for _, st := range s.data {
		if st.sessionID == sessionID {
			copy := *st.row
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})

	return result, nil
}

// Compile-time interface check.
var _ storage.SentimentStore = (*SentimentStore)(nil)
