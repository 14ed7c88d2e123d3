package scan

import (
	"context"
	"testing"

	"whaleflow/internal/domain"
	"whaleflow/internal/storage/memory"
)

func TestArchiveSourceTrades(t *testing.T) {
	ctx := context.Background()
	archive := memory.NewTradeArchive()

	trades := []*domain.Trade{
		{ID: 1, Symbol: "AAPL", Price: 180.0, Size: 15000, Timestamp: 1000},
		{ID: 2, Symbol: "AAPL", Price: 180.5, Size: 20000, Timestamp: 2000},
		{ID: 3, Symbol: "TSLA", Price: 250.0, Size: 12000, Timestamp: 1500},
		{ID: 4, Symbol: "AAPL", Price: 181.0, Size: 11000, Timestamp: 5000},
	}
	if err := archive.InsertBulk(ctx, trades); err != nil {
		t.Fatalf("InsertBulk() error = %v", err)
	}

	source := NewArchiveSource(archive)

	got, err := source.Trades(ctx, "AAPL", 1000, 2000)
	if err != nil {
		t.Fatalf("Trades() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Trades() returned %d trades, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("Trades() order = [%d %d], want [1 2]", got[0].ID, got[1].ID)
	}

	empty, err := source.Trades(ctx, "MSFT", 0, 10000)
	if err != nil {
		t.Fatalf("Trades() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Trades() for unknown symbol returned %d trades, want 0", len(empty))
	}
}
