// Package sentiment folds classified whale trades into per-symbol buy/sell
// rollups and a global notional ranking.
package sentiment

import (
	"sort"

	"whaleflow/internal/domain"
)

// HighConfidence is the confidence floor for the high-conviction net flow
// reported alongside the raw totals.
const HighConfidence = 0.80

// Aggregator owns all per-symbol accumulators for one scan session.
// Single writer: Fold is the only mutation path. Report and Ranked are
// idempotent reads and never mutate state.
type Aggregator struct {
	bySymbol map[string]*domain.TickerSentiment
	trades   []*domain.ClassifiedTrade

	// High-confidence net flow per symbol (>= HighConfidence only).
	highConfNet map[string]float64
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		bySymbol:    make(map[string]*domain.TickerSentiment),
		highConfNet: make(map[string]float64),
	}
}

// Fold accumulates a classified trade. Within one symbol, callers must fold
// in timestamp order to keep ranking tie-breaks deterministic. NEUTRAL
// trades are kept for the ranking but counted on neither side.
func (a *Aggregator) Fold(ct *domain.ClassifiedTrade) {
	cp := *ct
	a.trades = append(a.trades, &cp)

	sym := ct.Trade.Symbol
	ts, ok := a.bySymbol[sym]
	if !ok {
		ts = &domain.TickerSentiment{Symbol: sym}
		a.bySymbol[sym] = ts
	}

	value := ct.Notional()
	switch ct.Direction {
	case domain.DirectionBuy:
		ts.BuyCount++
		ts.BuyValue += value
		if ct.Confidence >= HighConfidence {
			a.highConfNet[sym] += value
		}
	case domain.DirectionSell:
		ts.SellCount++
		ts.SellValue += value
		if ct.Confidence >= HighConfidence {
			a.highConfNet[sym] -= value
		}
	}
}

// TradeCount returns the number of folded trades.
func (a *Aggregator) TradeCount() int {
	return len(a.trades)
}

// Report returns per-symbol sentiment ordered by symbol ASC. The returned
// values are copies; calling Report twice without intervening folds yields
// identical output.
func (a *Aggregator) Report() []*domain.TickerSentiment {
	out := make([]*domain.TickerSentiment, 0, len(a.bySymbol))
	for _, ts := range a.bySymbol {
		cp := *ts
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// HighConfNetFlow returns the net flow for a symbol counting only
// classifications at or above HighConfidence.
func (a *Aggregator) HighConfNetFlow(symbol string) float64 {
	return a.highConfNet[symbol]
}

// Ranked returns the top-n folded trades by notional value descending,
// ties broken by earlier timestamp. n <= 0 or n beyond the fold count
// returns everything. The result is a projection; internal state is
// untouched.
func (a *Aggregator) Ranked(n int) []*domain.ClassifiedTrade {
	return Rank(a.trades, n)
}

// Merge folds another aggregator's state into this one. Used to combine
// per-symbol aggregators after parallel scan workers finish; fine-grained
// locking during the scan is avoided by merging once.
func (a *Aggregator) Merge(other *Aggregator) {
	for sym, ts := range other.bySymbol {
		dst, ok := a.bySymbol[sym]
		if !ok {
			cp := *ts
			a.bySymbol[sym] = &cp
			continue
		}
		dst.BuyCount += ts.BuyCount
		dst.BuyValue += ts.BuyValue
		dst.SellCount += ts.SellCount
		dst.SellValue += ts.SellValue
	}
	for sym, net := range other.highConfNet {
		a.highConfNet[sym] += net
	}
	a.trades = append(a.trades, other.trades...)
}
