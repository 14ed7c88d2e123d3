// Package reporting produces session reports from stored scan results.
package reporting

import (
	"context"
	"fmt"
	"time"

	"whaleflow/internal/domain"
	"whaleflow/internal/sentiment"
	"whaleflow/internal/storage"
)

// DefaultTopN is the size of the ranked trade table.
const DefaultTopN = 5

// Generator produces reports from stored data.
type Generator struct {
	sessionStore   storage.SessionStore
	tradeStore     storage.ClassifiedTradeStore
	sentimentStore storage.SentimentStore
	topN           int
	sweepWindowMs  int64
	sweepMinLegs   int
	now            func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	sessionStore storage.SessionStore,
	tradeStore storage.ClassifiedTradeStore,
	sentimentStore storage.SentimentStore,
) *Generator {
	return &Generator{
		sessionStore:   sessionStore,
		tradeStore:     tradeStore,
		sentimentStore: sentimentStore,
		topN:           DefaultTopN,
		sweepWindowMs:  sentiment.DefaultSweepWindowMs,
		sweepMinLegs:   sentiment.DefaultSweepMinLegs,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopN sets the ranked trade table size.
func (g *Generator) WithTopN(n int) *Generator {
	if n > 0 {
		g.topN = n
	}
	return g
}

// WithSweepParams sets the sweep detection window and minimum leg count.
func (g *Generator) WithSweepParams(windowMs int64, minLegs int) *Generator {
	if windowMs > 0 {
		g.sweepWindowMs = windowMs
	}
	if minLegs > 0 {
		g.sweepMinLegs = minLegs
	}
	return g
}

// Generate produces a report for one scan session.
func (g *Generator) Generate(ctx context.Context, sessionID string) (*Report, error) {
	session, err := g.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	trades, err := g.tradeStore.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load whale trades: %w", err)
	}

	rows, err := g.sentimentStore.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load sentiment rows: %w", err)
	}

	return &Report{
		GeneratedAt: g.now(),
		Session:     session,
		Sentiment:   buildSentimentRows(rows, trades),
		TopTrades:   buildTradeRows(sentiment.Rank(trades, g.topN)),
		Sweeps:      buildSweepRows(sentiment.DetectSweeps(trades, g.sweepWindowMs, g.sweepMinLegs)),
		DarkPool:    buildDarkPoolSection(trades),
	}, nil
}

// buildSentimentRows joins stored sentiment with a high-confidence net flow
// recomputed from the trades themselves.
func buildSentimentRows(rows []*domain.TickerSentiment, trades []*domain.ClassifiedTrade) []SentimentRow {
	highConf := make(map[string]float64)
	for _, ct := range trades {
		if ct.Confidence < sentiment.HighConfidence {
			continue
		}
		switch ct.Direction {
		case domain.DirectionBuy:
			highConf[ct.Trade.Symbol] += ct.Notional()
		case domain.DirectionSell:
			highConf[ct.Trade.Symbol] -= ct.Notional()
		}
	}

	out := make([]SentimentRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, SentimentRow{
			Symbol:          r.Symbol,
			BuyCount:        r.BuyCount,
			BuyValue:        r.BuyValue,
			SellCount:       r.SellCount,
			SellValue:       r.SellValue,
			NetFlow:         r.NetFlow(),
			Label:           r.Label(),
			HighConfNetFlow: highConf[r.Symbol],
		})
	}
	return out
}

func buildTradeRows(trades []*domain.ClassifiedTrade) []TradeRow {
	out := make([]TradeRow, 0, len(trades))
	for _, ct := range trades {
		out = append(out, TradeRow{
			Symbol:     ct.Trade.Symbol,
			Direction:  ct.Direction,
			Confidence: ct.Confidence,
			Price:      ct.Trade.Price,
			Size:       ct.Trade.Size,
			Notional:   ct.Notional(),
			Timestamp:  ct.Trade.Timestamp,
			DarkPool:   ct.Trade.IsDarkPool(),
		})
	}
	return out
}

func buildSweepRows(sweeps []*sentiment.Sweep) []SweepRow {
	out := make([]SweepRow, 0, len(sweeps))
	for _, s := range sweeps {
		out = append(out, SweepRow{
			Symbol:        s.Symbol,
			Direction:     s.Direction,
			Legs:          s.LegCount(),
			TotalShares:   s.TotalShares,
			TotalNotional: s.TotalNotional,
			Exchanges:     s.Exchanges,
			StartTime:     s.StartTime,
			EndTime:       s.EndTime,
		})
	}
	return out
}

func buildDarkPoolSection(trades []*domain.ClassifiedTrade) DarkPoolSection {
	var d DarkPoolSection
	for _, ct := range trades {
		d.WhaleCount++
		d.TotalNotional += ct.Notional()
		if ct.Trade.IsDarkPool() {
			d.DarkPoolCount++
			d.DarkPoolNotional += ct.Notional()
		}
	}
	return d
}
