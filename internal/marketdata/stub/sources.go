package stub

import (
	"context"

	"whaleflow/internal/domain"
)

// StubTradeSource returns fixed in-memory trades for testing.
// Trades can be intentionally unordered to test downstream sorting.
// Implements scan.TradeSource interface.
type StubTradeSource struct {
	trades []*domain.Trade
}

// NewStubTradeSource creates a new stub trade source with the given trades.
func NewStubTradeSource(trades []*domain.Trade) *StubTradeSource {
	return &StubTradeSource{trades: trades}
}

// Trades returns trades matching the symbol and time range.
// Returns copies to prevent mutation.
func (s *StubTradeSource) Trades(_ context.Context, symbol string, from, to int64) ([]*domain.Trade, error) {
	var result []*domain.Trade
	for _, trade := range s.trades {
		if trade.Symbol == symbol && trade.Timestamp >= from && trade.Timestamp <= to {
			copy := *trade
			copy.Conditions = append([]string(nil), trade.Conditions...)
			result = append(result, &copy)
		}
	}
	return result, nil
}

// StubQuoteSource returns fixed in-memory quotes for testing.
// Implements quotes.Source interface.
type StubQuoteSource struct {
	quotes []*domain.Quote
}

// NewStubQuoteSource creates a new stub quote source with the given quotes.
func NewStubQuoteSource(quotes []*domain.Quote) *StubQuoteSource {
	return &StubQuoteSource{quotes: quotes}
}

// Quotes returns quotes matching the symbol and time range.
func (s *StubQuoteSource) Quotes(_ context.Context, symbol string, from, to int64) ([]*domain.Quote, error) {
	var result []*domain.Quote
	for _, quote := range s.quotes {
		if quote.Symbol == symbol && quote.Timestamp >= from && quote.Timestamp <= to {
			copy := *quote
			result = append(result, &copy)
		}
	}
	return result, nil
}
