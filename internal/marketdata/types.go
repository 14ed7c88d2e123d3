package marketdata

import (
	"time"

	"whaleflow/internal/domain"
)

// tradeRow mirrors the provider's trade payload.
type tradeRow struct {
	ID         int64     `json:"i"`
	Timestamp  time.Time `json:"t"`
	Price      float64   `json:"p"`
	Size       int64     `json:"s"`
	Exchange   string    `json:"x"`
	Conditions []string  `json:"c"`
	Tape       string    `json:"z"`
}

// quoteRow mirrors the provider's quote payload.
type quoteRow struct {
	Timestamp   time.Time `json:"t"`
	BidExchange string    `json:"bx"`
	BidPrice    float64   `json:"bp"`
	BidSize     int64     `json:"bs"`
	AskExchange string    `json:"ax"`
	AskPrice    float64   `json:"ap"`
	AskSize     int64     `json:"as"`
	Conditions  []string  `json:"c"`
	Tape        string    `json:"z"`
}

// tradesResponse is one page of the historical trades endpoint.
type tradesResponse struct {
	Trades        []tradeRow `json:"trades"`
	Symbol        string     `json:"symbol"`
	NextPageToken *string    `json:"next_page_token"`
}

// quotesResponse is one page of the historical quotes endpoint.
type quotesResponse struct {
	Quotes        []quoteRow `json:"quotes"`
	Symbol        string     `json:"symbol"`
	NextPageToken *string    `json:"next_page_token"`
}

func (r tradeRow) toDomain(symbol string) *domain.Trade {
	return &domain.Trade{
		ID:         r.ID,
		Symbol:     symbol,
		Price:      r.Price,
		Size:       r.Size,
		Timestamp:  r.Timestamp.UnixMilli(),
		Exchange:   r.Exchange,
		Tape:       r.Tape,
		Conditions: r.Conditions,
	}
}

func (r quoteRow) toDomain(symbol string) *domain.Quote {
	return &domain.Quote{
		Symbol:    symbol,
		BidPrice:  r.BidPrice,
		AskPrice:  r.AskPrice,
		Timestamp: r.Timestamp.UnixMilli(),
	}
}
