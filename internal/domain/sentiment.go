package domain

// SentimentLabel describes the net direction of whale flow for a symbol.
type SentimentLabel string

const (
	SentimentBullish SentimentLabel = "BULLISH"
	SentimentBearish SentimentLabel = "BEARISH"
	SentimentNeutral SentimentLabel = "NEUTRAL"
)

// String returns the string representation of SentimentLabel.
func (s SentimentLabel) String() string {
	return string(s)
}

// TickerSentiment accumulates classified whale flow for one symbol.
// Counts and values only grow as trades are folded in; NEUTRAL trades
// contribute to neither side.
type TickerSentiment struct {
	Symbol    string
	BuyCount  int
	BuyValue  float64
	SellCount int
	SellValue float64
}

// NetFlow returns buy value minus sell value.
func (t *TickerSentiment) NetFlow() float64 {
	return t.BuyValue - t.SellValue
}

// Label derives the sentiment label from net flow.
func (t *TickerSentiment) Label() SentimentLabel {
	switch net := t.NetFlow(); {
	case net > 0:
		return SentimentBullish
	case net < 0:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}
