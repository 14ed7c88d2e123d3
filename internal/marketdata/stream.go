package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"whaleflow/internal/domain"
	"whaleflow/internal/observability"
)

// DefaultStreamURL is the provider's real-time stock feed.
const DefaultStreamURL = "wss://stream.data.alpaca.markets/v2/iex"

// Stream reconnect/keepalive tuning.
const (
	streamHandshakeTimeout = 10 * time.Second
	streamReadTimeout      = 30 * time.Second
	streamWriteTimeout     = 5 * time.Second
	streamPingInterval     = 15 * time.Second
	streamInitialBackoff   = 1 * time.Second
	streamMaxBackoff       = 30 * time.Second
	streamBackoffMult      = 1.8
)

// StreamConfig configures a live market data subscription.
type StreamConfig struct {
	URL       string
	KeyID     string
	SecretKey string
	Symbols   []string
}

// Stream delivers live trades and quotes over WebSocket, reconnecting with
// bounded backoff until the context is cancelled.
type Stream struct {
	cfg StreamConfig
	log zerolog.Logger
}

// NewStream creates a live stream client.
func NewStream(cfg StreamConfig, log zerolog.Logger) *Stream {
	if cfg.URL == "" {
		cfg.URL = DefaultStreamURL
	}
	return &Stream{cfg: cfg, log: log}
}

// streamMessage is one element of the provider's message arrays.
type streamMessage struct {
	Type       string    `json:"T"`
	Symbol     string    `json:"S"`
	Msg        string    `json:"msg"`
	ID         int64     `json:"i"`
	Exchange   string    `json:"x"`
	Price      float64   `json:"p"`
	Size       int64     `json:"s"`
	BidPrice   float64   `json:"bp"`
	AskPrice   float64   `json:"ap"`
	Conditions []string  `json:"c"`
	Tape       string    `json:"z"`
	Timestamp  time.Time `json:"t"`
}

type streamRequest struct {
	Action string   `json:"action"`
	Key    string   `json:"key,omitempty"`
	Secret string   `json:"secret,omitempty"`
	Trades []string `json:"trades,omitempty"`
	Quotes []string `json:"quotes,omitempty"`
}

// Run connects, authenticates, subscribes, and delivers messages until ctx
// is cancelled. Trades and quotes are sent on the provided channels with
// blocking sends; the consumer owns its own buffering policy.
func (s *Stream) Run(ctx context.Context, trades chan<- *domain.Trade, quotes chan<- *domain.Quote) error {
	if len(s.cfg.Symbols) == 0 {
		return fmt.Errorf("stream requires at least one symbol")
	}

	backoff := streamInitialBackoff
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := s.consume(ctx, trades, quotes)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		observability.RecordStreamReconnect()
		s.log.Warn().Err(err).Dur("backoff", backoff).Msg("stream disconnected, reconnecting")

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = time.Duration(float64(backoff) * streamBackoffMult)
		if backoff > streamMaxBackoff {
			backoff = streamMaxBackoff
		}
	}
}

// consume runs one connection lifetime.
func (s *Stream) consume(ctx context.Context, trades chan<- *domain.Trade, quotes chan<- *domain.Quote) error {
	dialer := websocket.Dialer{HandshakeTimeout: streamHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	if err := s.writeJSON(conn, streamRequest{Action: "auth", Key: s.cfg.KeyID, Secret: s.cfg.SecretKey}); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := s.writeJSON(conn, streamRequest{Action: "subscribe", Trades: s.cfg.Symbols, Quotes: s.cfg.Symbols}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	s.log.Info().Strs("symbols", s.cfg.Symbols).Msg("connected to live trade stream")

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go s.pingLoop(pingCtx, conn)

	// Close the connection when the context ends so the blocking read
	// below returns.
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

		var msgs []streamMessage
		if err := json.Unmarshal(data, &msgs); err != nil {
			s.log.Warn().Err(err).Msg("skipping unparseable stream frame")
			continue
		}

		for _, m := range msgs {
			switch m.Type {
			case "t":
				trade := &domain.Trade{
					ID:         m.ID,
					Symbol:     m.Symbol,
					Price:      m.Price,
					Size:       m.Size,
					Timestamp:  m.Timestamp.UnixMilli(),
					Exchange:   m.Exchange,
					Tape:       m.Tape,
					Conditions: m.Conditions,
				}
				select {
				case trades <- trade:
				case <-ctx.Done():
					return ctx.Err()
				}
			case "q":
				quote := &domain.Quote{
					Symbol:    m.Symbol,
					BidPrice:  m.BidPrice,
					AskPrice:  m.AskPrice,
					Timestamp: m.Timestamp.UnixMilli(),
				}
				select {
				case quotes <- quote:
				case <-ctx.Done():
					return ctx.Err()
				}
			case "error":
				return fmt.Errorf("stream error: %s", m.Msg)
			case "success", "subscription":
				// Control acknowledgements, nothing to deliver.
			}
		}
	}
}

func (s *Stream) writeJSON(conn *websocket.Conn, req streamRequest) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(req)
}

func (s *Stream) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Warn().Err(err).Msg("stream ping failed")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
