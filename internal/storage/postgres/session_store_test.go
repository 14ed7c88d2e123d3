package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

func TestSessionStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	s := &domain.ScanSession{
		SessionID:   "scan-20250314-01",
		Symbols:     []string{"AAPL", "TSLA", "NVDA"},
		StartTime:   1741964400000,
		EndTime:     1741987800000,
		MinShares:   10000,
		MinValue:    500000,
		TradesSeen:  48210,
		WhalesFound: 17,
		CreatedAt:   1741990000000,
	}

	require.NoError(t, store.Insert(ctx, s))

	got, err := store.GetByID(ctx, "scan-20250314-01")
	require.NoError(t, err)
	require.Equal(t, s.SessionID, got.SessionID)
	require.Equal(t, s.Symbols, got.Symbols)
	require.Equal(t, s.MinShares, got.MinShares)
	require.Equal(t, s.MinValue, got.MinValue)
	require.Equal(t, s.TradesSeen, got.TradesSeen)
	require.Equal(t, s.WhalesFound, got.WhalesFound)
}

func TestSessionStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	s := &domain.ScanSession{SessionID: "dup", CreatedAt: 1000}
	require.NoError(t, store.Insert(ctx, s))

	err := store.Insert(ctx, s)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSessionStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	for _, s := range []*domain.ScanSession{
		{SessionID: "s1", CreatedAt: 1000},
		{SessionID: "s2", CreatedAt: 3000},
		{SessionID: "s3", CreatedAt: 2000},
	} {
		require.NoError(t, store.Insert(ctx, s))
	}

	got, err := store.GetByTimeRange(ctx, 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "s1", got[0].SessionID)
	require.Equal(t, "s3", got[1].SessionID)
}
