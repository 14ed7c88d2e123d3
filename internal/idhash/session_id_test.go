package idhash

import "testing"

func TestComputeSessionID(t *testing.T) {
	id := ComputeSessionID([]string{"AAPL", "TSLA"}, 1000, 2000, 10000, 500000)

	if len(id) != 64 {
		t.Errorf("expected 64-character hash, got %d", len(id))
	}

	// Deterministic for identical inputs.
	again := ComputeSessionID([]string{"AAPL", "TSLA"}, 1000, 2000, 10000, 500000)
	if id != again {
		t.Error("same inputs must produce the same ID")
	}

	// Symbol order must not matter.
	reordered := ComputeSessionID([]string{"TSLA", "AAPL"}, 1000, 2000, 10000, 500000)
	if id != reordered {
		t.Error("symbol order must not change the ID")
	}

	// Any parameter change produces a different ID.
	different := ComputeSessionID([]string{"AAPL", "TSLA"}, 1000, 2001, 10000, 500000)
	if id == different {
		t.Error("different window must change the ID")
	}
	raised := ComputeSessionID([]string{"AAPL", "TSLA"}, 1000, 2000, 20000, 500000)
	if id == raised {
		t.Error("different thresholds must change the ID")
	}
}

func TestComputeSessionID_DoesNotMutateInput(t *testing.T) {
	symbols := []string{"TSLA", "AAPL"}
	ComputeSessionID(symbols, 0, 0, 0, 0)

	if symbols[0] != "TSLA" || symbols[1] != "AAPL" {
		t.Error("input slice must not be sorted in place")
	}
}
