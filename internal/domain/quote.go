package domain

// Quote is an NBBO snapshot for a symbol at a point in time.
// Bid <= Ask is expected; a crossed quote is a data-quality degradation,
// not a fatal error (see classify package).
type Quote struct {
	Symbol    string  // ticker symbol
	BidPrice  float64 // best bid
	AskPrice  float64 // best ask
	Timestamp int64   // Unix timestamp in milliseconds
}

// Spread returns ask - bid. Negative for crossed quotes.
func (q *Quote) Spread() float64 {
	return q.AskPrice - q.BidPrice
}

// Crossed reports whether bid exceeds ask.
func (q *Quote) Crossed() bool {
	return q.BidPrice > q.AskPrice
}
