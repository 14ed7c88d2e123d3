package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage"
)

func TestSentimentStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSentimentStore(conn)
	ctx := context.Background()

	rows := []*domain.TickerSentiment{
		{Symbol: "TSLA", BuyCount: 1, BuyValue: 800000, SellCount: 3, SellValue: 1200000},
		{Symbol: "AAPL", BuyCount: 2, BuyValue: 1500000, SellCount: 1, SellValue: 400000},
	}
	require.NoError(t, store.InsertBulk(ctx, "s", rows))

	got, err := store.GetBySessionID(ctx, "s")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by symbol ASC.
	require.Equal(t, "AAPL", got[0].Symbol)
	require.Equal(t, "TSLA", got[1].Symbol)
	require.Equal(t, 1100000.0, got[0].NetFlow())
	require.Equal(t, domain.SentimentBullish, got[0].Label())
	require.Equal(t, domain.SentimentBearish, got[1].Label())
}

func TestSentimentStore_DuplicateSymbol(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSentimentStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "s", []*domain.TickerSentiment{{Symbol: "AAPL", BuyCount: 1}}))

	err := store.InsertBulk(ctx, "s", []*domain.TickerSentiment{{Symbol: "AAPL", BuyCount: 2}})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same symbol in another session is fine.
	require.NoError(t, store.InsertBulk(ctx, "s2", []*domain.TickerSentiment{{Symbol: "AAPL", BuyCount: 1}}))
}

func TestSentimentStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSentimentStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, "s", []*domain.TickerSentiment{
		{Symbol: "AAPL"},
		{Symbol: "AAPL"},
	})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySessionID(ctx, "s")
	require.NoError(t, err)
	require.Empty(t, got)
}
