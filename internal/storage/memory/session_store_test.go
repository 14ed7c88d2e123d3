package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

func TestSessionStore_InsertAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	s := &domain.ScanSession{
		SessionID: "scan-20250314-01",
		Symbols:   []string{"AAPL", "TSLA"},
		StartTime: 1741964400000,
		EndTime:   1741987800000,
		MinShares: 10000,
		MinValue:  500000,
		CreatedAt: 1741990000000,
	}

	err := store.Insert(ctx, s)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "scan-20250314-01")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.SessionID != s.SessionID {
		t.Errorf("SessionID mismatch: got %s, want %s", got.SessionID, s.SessionID)
	}
	if len(got.Symbols) != 2 {
		t.Errorf("expected 2 symbols, got %d", len(got.Symbols))
	}
	if got.MinShares != 10000 {
		t.Errorf("MinShares mismatch: got %d, want 10000", got.MinShares)
	}
}

func TestSessionStore_DuplicateKey(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	s := &domain.ScanSession{SessionID: "dup", CreatedAt: 1741990000000}

	if err := store.Insert(ctx, s); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, s)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestSessionStore_InvalidInput(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil session, got %v", err)
	}
	if err := store.Insert(ctx, &domain.ScanSession{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty session_id, got %v", err)
	}
}

func TestSessionStore_NotFound(t *testing.T) {
	store := NewSessionStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_GetByTimeRange(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	sessions := []*domain.ScanSession{
		{SessionID: "s1", CreatedAt: 1000},
		{SessionID: "s2", CreatedAt: 3000},
		{SessionID: "s3", CreatedAt: 2000},
	}
	for _, s := range sessions {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert %s failed: %v", s.SessionID, err)
		}
	}

	got, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}
	if got[0].SessionID != "s1" || got[1].SessionID != "s3" {
		t.Errorf("expected [s1 s3] ordered by created_at, got [%s %s]", got[0].SessionID, got[1].SessionID)
	}
}

func TestSessionStore_CopyIsolation(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	s := &domain.ScanSession{SessionID: "iso", Symbols: []string{"AAPL"}, CreatedAt: 1000}
	if err := store.Insert(ctx, s); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the original must not affect the stored copy.
	s.Symbols[0] = "MUTATED"
	s.MinShares = 99

	got, err := store.GetByID(ctx, "iso")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Symbols[0] != "AAPL" {
		t.Errorf("stored symbols mutated: got %s", got.Symbols[0])
	}
	if got.MinShares != 0 {
		t.Errorf("stored session mutated: MinShares = %d", got.MinShares)
	}
}

func TestSessionStore_ConcurrentInsert(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s := &domain.ScanSession{
				SessionID: string(rune('a'+n%26)) + string(rune('0'+n/26)),
				CreatedAt: int64(n),
			}
			store.Insert(ctx, s)
		}(i)
	}
	wg.Wait()

	got, err := store.GetByTimeRange(ctx, 0, 100)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 50 {
		t.Errorf("expected 50 sessions, got %d", len(got))
	}
}
