// Package whale screens trades against size and notional-value thresholds.
package whale

import (
	"errors"
	"fmt"

	"whaleflow/internal/domain"
)

// ErrInvalidConfiguration is returned for negative thresholds.
// Configuration failures are fatal at setup time, before any processing.
var ErrInvalidConfiguration = errors.New("invalid whale filter configuration")

// Filter retains trades meeting either the share-count or the
// notional-value threshold. A zero threshold matches every trade.
type Filter struct {
	minShares int64
	minValue  float64
}

// NewFilter creates a whale filter. Both thresholds must be >= 0.
func NewFilter(minShares int64, minValue float64) (*Filter, error) {
	if minShares < 0 {
		return nil, fmt.Errorf("%w: min shares %d is negative", ErrInvalidConfiguration, minShares)
	}
	if minValue < 0 {
		return nil, fmt.Errorf("%w: min value %f is negative", ErrInvalidConfiguration, minValue)
	}
	return &Filter{minShares: minShares, minValue: minValue}, nil
}

// MinShares returns the configured share threshold.
func (f *Filter) MinShares() int64 { return f.minShares }

// MinValue returns the configured notional threshold.
func (f *Filter) MinValue() float64 { return f.minValue }

// IsWhale reports whether the trade meets the share threshold OR the
// notional threshold. A large-notional trade of few shares still qualifies.
func (f *Filter) IsWhale(t *domain.Trade) bool {
	return t.Size >= f.minShares || t.Notional() >= f.minValue
}

// Triggers returns human-readable reasons the trade qualified, for alert
// output. Empty when the trade is not a whale.
func (f *Filter) Triggers(t *domain.Trade) []string {
	var reasons []string
	if t.Size >= f.minShares {
		reasons = append(reasons, fmt.Sprintf("SIZE: %d shares", t.Size))
	}
	if t.Notional() >= f.minValue {
		reasons = append(reasons, fmt.Sprintf("VALUE: $%.2f", t.Notional()))
	}
	return reasons
}
