package sentiment

import (
	"reflect"
	"testing"

	"whaleflow/internal/domain"
)

func classified(sym string, price float64, size int64, ts int64, dir domain.Direction, conf float64) *domain.ClassifiedTrade {
	return &domain.ClassifiedTrade{
		Trade:      domain.Trade{Symbol: sym, Price: price, Size: size, Timestamp: ts},
		Direction:  dir,
		Confidence: conf,
	}
}

func TestAggregator_FoldAndReport(t *testing.T) {
	agg := NewAggregator()

	// One BUY worth 100,000 and one SELL worth 40,000 for AAPL.
	agg.Fold(classified("AAPL", 100, 1000, 1000, domain.DirectionBuy, 0.95))
	agg.Fold(classified("AAPL", 40, 1000, 2000, domain.DirectionSell, 0.95))

	report := agg.Report()
	if len(report) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(report))
	}

	ts := report[0]
	if ts.BuyCount != 1 || ts.BuyValue != 100_000 {
		t.Errorf("buy side: got count=%d value=%f", ts.BuyCount, ts.BuyValue)
	}
	if ts.SellCount != 1 || ts.SellValue != 40_000 {
		t.Errorf("sell side: got count=%d value=%f", ts.SellCount, ts.SellValue)
	}
	if ts.NetFlow() != 60_000 {
		t.Errorf("net flow: got %f, want 60000", ts.NetFlow())
	}
	if ts.Label() != domain.SentimentBullish {
		t.Errorf("label: got %s, want BULLISH", ts.Label())
	}
}

func TestAggregator_ReportIsIdempotent(t *testing.T) {
	agg := NewAggregator()
	agg.Fold(classified("TSLA", 250, 6000, 1000, domain.DirectionBuy, 0.95))
	agg.Fold(classified("AAPL", 178, 5000, 2000, domain.DirectionSell, 0.80))
	agg.Fold(classified("NVDA", 900, 2000, 3000, domain.DirectionNeutral, 0.50))

	first := agg.Report()
	second := agg.Report()

	if !reflect.DeepEqual(first, second) {
		t.Error("consecutive Report calls diverged without intervening folds")
	}

	// Mutating the returned copies must not leak into the aggregator.
	first[0].BuyValue += 999
	third := agg.Report()
	if !reflect.DeepEqual(second, third) {
		t.Error("Report returned a reference to internal state")
	}
}

func TestAggregator_NeutralRanksButDoesNotCount(t *testing.T) {
	agg := NewAggregator()
	agg.Fold(classified("SPY", 500, 10000, 1000, domain.DirectionNeutral, 0.50)) // 5M
	agg.Fold(classified("SPY", 500, 2000, 2000, domain.DirectionBuy, 0.95))     // 1M

	report := agg.Report()
	ts := report[0]
	if ts.BuyCount != 1 || ts.SellCount != 0 {
		t.Errorf("neutral trade leaked into totals: %+v", ts)
	}
	if ts.BuyValue != 1_000_000 {
		t.Errorf("buy value: got %f, want 1000000", ts.BuyValue)
	}

	ranked := agg.Ranked(10)
	if len(ranked) != 2 {
		t.Fatalf("expected neutral trade in ranking, got %d entries", len(ranked))
	}
	if ranked[0].Direction != domain.DirectionNeutral {
		t.Errorf("expected the 5M neutral trade ranked first, got %s", ranked[0].Direction)
	}
}

func TestAggregator_RankedOrderAndTruncation(t *testing.T) {
	agg := NewAggregator()
	// Notional values 50, 200, 10.
	agg.Fold(classified("A", 50, 1, 1000, domain.DirectionBuy, 0.95))
	agg.Fold(classified("B", 200, 1, 2000, domain.DirectionSell, 0.95))
	agg.Fold(classified("C", 10, 1, 3000, domain.DirectionBuy, 0.95))

	ranked := agg.Ranked(2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ranked))
	}
	if ranked[0].Notional() != 200 || ranked[1].Notional() != 50 {
		t.Errorf("order: got [%f, %f], want [200, 50]", ranked[0].Notional(), ranked[1].Notional())
	}
}

func TestAggregator_RankedTieBreaksByEarlierTimestamp(t *testing.T) {
	agg := NewAggregator()
	agg.Fold(classified("A", 100, 10, 5000, domain.DirectionBuy, 0.95))
	agg.Fold(classified("B", 100, 10, 1000, domain.DirectionBuy, 0.95))

	ranked := agg.Ranked(2)
	if ranked[0].Trade.Timestamp != 1000 {
		t.Errorf("tie-break: expected earlier timestamp first, got %d", ranked[0].Trade.Timestamp)
	}
}

func TestAggregator_OrderingContractIsLoadBearing(t *testing.T) {
	// Two equal-notional trades folded in timestamp order vs reversed:
	// the ranking head differs, which is why per-symbol folds must stay
	// in timestamp order.
	inOrder := NewAggregator()
	inOrder.Fold(classified("A", 100, 10, 1000, domain.DirectionBuy, 0.95))
	inOrder.Fold(classified("A", 100, 10, 2000, domain.DirectionSell, 0.95))

	reversed := NewAggregator()
	reversed.Fold(classified("A", 100, 10, 2000, domain.DirectionSell, 0.95))
	reversed.Fold(classified("A", 100, 10, 1000, domain.DirectionBuy, 0.95))

	// Totals are order-independent.
	if !reflect.DeepEqual(inOrder.Report(), reversed.Report()) {
		t.Error("per-symbol totals should not depend on fold order")
	}

	// The ranking still breaks the tie by timestamp, so both agree here;
	// but with equal timestamps the fold order would decide. Document that
	// divergence with an equal-timestamp pair.
	a := NewAggregator()
	a.Fold(classified("A", 100, 10, 1000, domain.DirectionBuy, 0.95))
	a.Fold(classified("A", 100, 10, 1000, domain.DirectionSell, 0.95))

	b := NewAggregator()
	b.Fold(classified("A", 100, 10, 1000, domain.DirectionSell, 0.95))
	b.Fold(classified("A", 100, 10, 1000, domain.DirectionBuy, 0.95))

	if a.Ranked(1)[0].Direction == b.Ranked(1)[0].Direction {
		t.Error("expected out-of-order folds of tied trades to produce divergent rankings")
	}
}

func TestAggregator_HighConfidenceNetFlow(t *testing.T) {
	agg := NewAggregator()
	agg.Fold(classified("AAPL", 100, 1000, 1000, domain.DirectionBuy, 0.95))  // 100k, high conf
	agg.Fold(classified("AAPL", 100, 500, 2000, domain.DirectionSell, 0.60))  // 50k, low conf
	agg.Fold(classified("AAPL", 100, 200, 3000, domain.DirectionSell, 0.80))  // 20k, at floor

	if got := agg.HighConfNetFlow("AAPL"); got != 80_000 {
		t.Errorf("high-conf net flow: got %f, want 80000", got)
	}
}

func TestAggregator_Merge(t *testing.T) {
	a := NewAggregator()
	a.Fold(classified("AAPL", 100, 1000, 1000, domain.DirectionBuy, 0.95))

	b := NewAggregator()
	b.Fold(classified("AAPL", 100, 500, 2000, domain.DirectionSell, 0.95))
	b.Fold(classified("TSLA", 250, 6000, 1500, domain.DirectionBuy, 0.95))

	a.Merge(b)

	report := a.Report()
	if len(report) != 2 {
		t.Fatalf("expected 2 symbols after merge, got %d", len(report))
	}

	aapl := report[0]
	if aapl.Symbol != "AAPL" || aapl.BuyCount != 1 || aapl.SellCount != 1 {
		t.Errorf("AAPL after merge: %+v", aapl)
	}
	if a.TradeCount() != 3 {
		t.Errorf("trade count after merge: got %d, want 3", a.TradeCount())
	}
}

func TestRank_EmptyAndOversizedN(t *testing.T) {
	if got := Rank(nil, 5); len(got) != 0 {
		t.Errorf("expected empty ranking, got %d", len(got))
	}

	trades := []*domain.ClassifiedTrade{
		classified("A", 1, 1, 1, domain.DirectionBuy, 0.95),
	}
	if got := Rank(trades, 100); len(got) != 1 {
		t.Errorf("n beyond len: expected 1, got %d", len(got))
	}
	if got := Rank(trades, 0); len(got) != 1 {
		t.Errorf("n=0 returns everything: expected 1, got %d", len(got))
	}
}
