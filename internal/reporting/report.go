package reporting

import (
	"time"

	"whaleflow/internal/domain"
)

// Report is a rendered summary of one scan session.
type Report struct {
	GeneratedAt time.Time
	Session     *domain.ScanSession

	// Sentiment rows, ordered by symbol ASC.
	Sentiment []SentimentRow

	// TopTrades holds the largest whale trades by notional, descending.
	TopTrades []TradeRow

	// Sweeps holds detected multi-leg bursts, largest notional first.
	Sweeps []SweepRow

	DarkPool DarkPoolSection
}

// SentimentRow is one symbol's sentiment summary.
type SentimentRow struct {
	Symbol          string
	BuyCount        int
	BuyValue        float64
	SellCount       int
	SellValue       float64
	NetFlow         float64
	Label           domain.SentimentLabel
	HighConfNetFlow float64
}

// TradeRow is one whale trade in the ranked table.
type TradeRow struct {
	Symbol     string
	Direction  domain.Direction
	Confidence float64
	Price      float64
	Size       int64
	Notional   float64
	Timestamp  int64
	DarkPool   bool
}

// SweepRow is one detected sweep: several whale legs on the same symbol
// printed in rapid succession.
type SweepRow struct {
	Symbol        string
	Direction     domain.Direction
	Legs          int
	TotalShares   int64
	TotalNotional float64
	Exchanges     []string
	StartTime     int64
	EndTime       int64
}

// DarkPoolSection summarizes off-exchange whale activity.
type DarkPoolSection struct {
	WhaleCount       int
	DarkPoolCount    int
	TotalNotional    float64
	DarkPoolNotional float64
}

// DarkPoolShare returns the notional fraction executed off-exchange.
func (d DarkPoolSection) DarkPoolShare() float64 {
	if d.TotalNotional == 0 {
		return 0
	}
	return d.DarkPoolNotional / d.TotalNotional
}
