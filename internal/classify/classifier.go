// Package classify infers trade aggressor side from the prevailing quote
// (quote rule, a simplified Lee-Ready classifier).
package classify

import "whaleflow/internal/domain"

// Confidence anchors for the quote rule.
const (
	// ConfidenceAtQuote is assigned when the trade prints at or through the quote.
	ConfidenceAtQuote = 0.95
	// ConfidenceBase is the floor for in-spread classifications.
	ConfidenceBase = 0.50
	// ConfidenceCrossedCap bounds confidence when the quote itself is crossed.
	ConfidenceCrossedCap = 0.50
)

// Spread position thresholds: trades above buyZone lean BUY, below sellZone lean SELL.
const (
	buyZone  = 0.70
	sellZone = 0.30
)

// Classify infers the aggressor side of a trade from the bid/ask in effect
// at execution time. Pure function: identical inputs always produce
// identical outputs.
//
// Rules, in order:
//   - missing or non-positive bid/ask: unclassifiable (NEUTRAL, 0.0)
//   - crossed quote (bid > ask): spread width is unusable, classify by price
//     equality to bid/ask only, confidence capped at ConfidenceCrossedCap
//   - locked quote (bid == ask): (NEUTRAL, 0.0)
//   - price at/through the ask: (BUY, 0.95); at/through the bid: (SELL, 0.95)
//   - otherwise position = (price-bid)/spread; the upper [0.70, 1.0) band is
//     BUY and the lower (0.0, 0.30] band is SELL, confidence interpolated
//     linearly from 0.50 at the band edge to 0.95 at the quote; the middle
//     of the spread is (NEUTRAL, 0.50)
func Classify(price, bid, ask float64) (domain.Direction, float64) {
	if bid <= 0 || ask <= 0 {
		return domain.DirectionNeutral, 0.0
	}

	if bid > ask {
		switch price {
		case ask:
			return domain.DirectionBuy, ConfidenceCrossedCap
		case bid:
			return domain.DirectionSell, ConfidenceCrossedCap
		default:
			return domain.DirectionNeutral, 0.0
		}
	}

	spread := ask - bid
	if spread == 0 {
		return domain.DirectionNeutral, 0.0
	}

	if price >= ask {
		return domain.DirectionBuy, ConfidenceAtQuote
	}
	if price <= bid {
		return domain.DirectionSell, ConfidenceAtQuote
	}

	// Strictly inside the spread from here, so position is in (0, 1).
	position := (price - bid) / spread
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}

	switch {
	case position >= buyZone:
		return domain.DirectionBuy, lerp(position, buyZone, 1.0, ConfidenceBase, ConfidenceAtQuote)
	case position <= sellZone:
		return domain.DirectionSell, lerp(position, sellZone, 0.0, ConfidenceBase, ConfidenceAtQuote)
	default:
		return domain.DirectionNeutral, ConfidenceBase
	}
}

// Trade classifies a trade against the quote in effect at its execution time.
// A nil quote means no quote was available within the lookback window; the
// trade is retained as unclassifiable rather than dropped.
func Trade(t domain.Trade, q *domain.Quote) domain.ClassifiedTrade {
	if q == nil {
		return domain.ClassifiedTrade{
			Trade:     t,
			Direction: domain.DirectionNeutral,
		}
	}

	dir, conf := Classify(t.Price, q.BidPrice, q.AskPrice)
	return domain.ClassifiedTrade{
		Trade:      t,
		Quote:      q,
		Direction:  dir,
		Confidence: conf,
	}
}

// lerp maps x from [x0, x1] onto [y0, y1].
func lerp(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}
