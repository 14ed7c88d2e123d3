package domain

// Direction is the inferred aggressor side of a trade.
type Direction string

const (
	DirectionBuy     Direction = "BUY"
	DirectionSell    Direction = "SELL"
	DirectionNeutral Direction = "NEUTRAL"
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	return string(d)
}

// IsValid checks if the direction is a valid value.
func (d Direction) IsValid() bool {
	return d == DirectionBuy || d == DirectionSell || d == DirectionNeutral
}

// ClassifiedTrade pairs a trade with the quote in effect at execution time
// plus the inferred direction. Never mutated after creation.
type ClassifiedTrade struct {
	Trade      Trade
	Quote      *Quote  // quote used for classification, nil when unavailable
	Direction  Direction
	Confidence float64 // [0.0, 1.0]; 0.0 means unclassifiable
}

// Notional returns the dollar value of the underlying trade.
func (c *ClassifiedTrade) Notional() float64 {
	return c.Trade.Notional()
}
