package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

// ClassifiedTradeStore is an in-memory implementation of storage.ClassifiedTradeStore.
type ClassifiedTradeStore struct {
	mu   sync.RWMutex
	data map[string]*storedTrade // keyed by composite key
}

type storedTrade struct {
	sessionID string
	trade     *domain.ClassifiedTrade
}

// NewClassifiedTradeStore creates a new in-memory classified trade store.
func NewClassifiedTradeStore() *ClassifiedTradeStore {
	return &ClassifiedTradeStore{
		data: make(map[string]*storedTrade),
	}
}

// tradeKey generates a unique key for a classified trade.
func tradeKey(sessionID, symbol string, tradeID int64) string {
	return fmt.Sprintf("%s|%s|%d", sessionID, symbol, tradeID)
}

func copyClassified(t *domain.ClassifiedTrade) *domain.ClassifiedTrade {
	copy := *t
	copy.Trade.Conditions = append([]string(nil), t.Trade.Conditions...)
	if t.Quote != nil {
		q := *t.Quote
		copy.Quote = &q
	}
	return &copy
}

// Insert adds a classified whale trade for a session.
// Returns ErrDuplicateKey if (session_id, symbol, trade_id) exists.
func (s *ClassifiedTradeStore) Insert(_ context.Context, sessionID string, t *domain.ClassifiedTrade) error {
	if t == nil || sessionID == "" || t.Trade.Symbol == "" {
		return storage.ErrInvalidInput
	}

	key := tradeKey(sessionID, t.Trade.Symbol, t.Trade.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = &storedTrade{sessionID: sessionID, trade: copyClassified(t)}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *ClassifiedTradeStore) InsertBulk(_ context.Context, sessionID string, trades []*domain.ClassifiedTrade) error {
	if len(trades) == 0 {
		return nil
	}
	if sessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(trades))

	for _, t := range trades {
		if t == nil || t.Trade.Symbol == "" {
			return storage.ErrInvalidInput
		}
		key := tradeKey(sessionID, t.Trade.Symbol, t.Trade.ID)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, t := range trades {
		key := tradeKey(sessionID, t.Trade.Symbol, t.Trade.ID)
		s.data[key] = &storedTrade{sessionID: sessionID, trade: copyClassified(t)}
	}

	return nil
}

// GetBySessionID retrieves all trades for a session, ordered by timestamp ASC.
func (s *ClassifiedTradeStore) GetBySessionID(_ context.Context, sessionID string) ([]*domain.ClassifiedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClassifiedTrade
	for _, st := range s.data {
		if st.sessionID == sessionID {
			result = append(result, copyClassified(st.trade))
		}
	}

	sortByTimestamp(result)
	return result, nil
}

// GetBySymbol retrieves trades for a session and symbol, ordered by timestamp ASC.
func (s *ClassifiedTradeStore) GetBySymbol(_ context.Context, sessionID, symbol string) ([]*domain.ClassifiedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClassifiedTrade
	for _, st := range s.data {
		if st.sessionID == sessionID && st.trade.Trade.Symbol == symbol {
			result = append(result, copyClassified(st.trade))
		}
	}

	sortByTimestamp(result)
	return result, nil
}

func sortByTimestamp(trades []*domain.ClassifiedTrade) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Trade.Timestamp != trades[j].Trade.Timestamp {
			return trades[i].Trade.Timestamp < trades[j].Trade.Timestamp
		}
		return trades[i].Trade.ID < trades[j].Trade.ID
	})
}

// Compile-time interface check.
var _ storage.ClassifiedTradeStore = (*ClassifiedTradeStore)(nil)
