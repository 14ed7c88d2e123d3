package domain

// Trade represents a single execution reported by the market data provider.
// Immutable once received.
type Trade struct {
	ID         int64    // provider-assigned trade ID
	Symbol     string   // ticker symbol
	Price      float64  // execution price
	Size       int64    // shares traded
	Timestamp  int64    // Unix timestamp in milliseconds
	Exchange   string   // exchange code where the trade printed
	Tape       string   // tape (A/B/C)
	Conditions []string // trade condition codes
}

// ExchangeDarkPool is the exchange code for off-exchange (FINRA ADF) prints.
const ExchangeDarkPool = "D"

// Notional returns the dollar value of the trade (price * size).
func (t *Trade) Notional() float64 {
	return t.Price * float64(t.Size)
}

// IsDarkPool reports whether the trade printed off-exchange.
func (t *Trade) IsDarkPool() bool {
	return t.Exchange == ExchangeDarkPool
}
