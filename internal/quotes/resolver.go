// Package quotes resolves the quote in effect at a trade's execution time.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whaleflow/internal/domain"
)

// ErrQuoteUnavailable is returned when no quote exists within the lookback
// window. Callers must treat the trade as unclassifiable (NEUTRAL,
// confidence 0) rather than failing the batch.
var ErrQuoteUnavailable = errors.New("no quote available within lookback window")

// Source provides historical quotes from the external market data provider.
type Source interface {
	// Quotes returns quotes for a symbol within [from, to] (inclusive, ms),
	// ordered by timestamp ASC.
	Quotes(ctx context.Context, symbol string, from, to int64) ([]*domain.Quote, error)
}

// Default retry configuration for transient source failures.
const (
	DefaultLookback    = 5 * time.Minute
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// Resolver finds the latest quote at or before a trade timestamp.
// Transient source errors are retried with bounded exponential backoff and
// ultimately surfaced as ErrQuoteUnavailable.
type Resolver struct {
	source      Source
	lookback    time.Duration
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookback sets the quote staleness tolerance.
func WithLookback(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.lookback = d }
}

// WithMaxRetries sets the maximum retry attempts for source failures.
func WithMaxRetries(n int) ResolverOption {
	return func(r *Resolver) { r.maxRetries = n }
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.retryDelay = d }
}

// NewResolver creates a resolver backed by the given source.
func NewResolver(source Source, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:      source,
		lookback:    DefaultLookback,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookback returns the configured staleness tolerance.
func (r *Resolver) Lookback() time.Duration { return r.lookback }

// Resolve returns the latest quote with timestamp <= at within the lookback
// window. Returns ErrQuoteUnavailable (possibly wrapping the last source
// error) when none exists or the source is exhausted.
func (r *Resolver) Resolve(ctx context.Context, symbol string, at int64) (*domain.Quote, error) {
	from := at - r.lookback.Milliseconds()

	var lastErr error
	delay := r.retryDelay

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * r.backoffMult)
			if delay > r.maxDelay {
				delay = r.maxDelay
			}
		}

		batch, err := r.source.Quotes(ctx, symbol, from, at)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		q := latestAtOrBefore(batch, at)
		if q == nil {
			return nil, ErrQuoteUnavailable
		}
		return q, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, lastErr)
}

// latestAtOrBefore returns the last quote with timestamp <= at.
// Quotes are ordered ASC, so scan from the end.
func latestAtOrBefore(batch []*domain.Quote, at int64) *domain.Quote {
	for i := len(batch) - 1; i >= 0; i-- {
		if batch[i].Timestamp <= at {
			q := *batch[i]
			return &q
		}
	}
	return nil
}
