// Package stream monitors a live trade feed for whale activity.
package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"whaleflow/internal/classify"
	"whaleflow/internal/domain"
	"whaleflow/internal/observability"
	"whaleflow/internal/quotes"
	"whaleflow/internal/sentiment"
	"whaleflow/internal/whale"
)

// Default configuration values.
const (
	DefaultQueueSize = 1024
	DefaultStaleness = 5 * time.Minute
)

// Alert describes one whale detection on the live feed.
type Alert struct {
	Trade    *domain.ClassifiedTrade
	Triggers []string
}

// AlertFunc receives whale alerts. It runs on the processing goroutine,
// so slow handlers delay classification of queued trades.
type AlertFunc func(ctx context.Context, a Alert)

// MonitorOptions contains configuration for creating a Monitor.
type MonitorOptions struct {
	Filter *whale.Filter
	Cache  quotes.LatestCache

	// OnAlert is invoked for every classified whale trade. Optional.
	OnAlert AlertFunc

	// QueueSize bounds the whale processing queue. When the queue is
	// full the oldest queued trade is dropped to admit the newest.
	// Default: 1024.
	QueueSize int

	// Staleness rejects cached quotes older than this relative to the
	// trade. Default: 5 minutes.
	Staleness time.Duration

	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// Monitor consumes live trades and quotes, filters whales, classifies them
// against the latest cached quote, and maintains a running sentiment tally.
// Counters and sentiment survive cancellation so a final report can be
// produced after shutdown.
type Monitor struct {
	filter    *whale.Filter
	cache     quotes.LatestCache
	onAlert   AlertFunc
	queueSize int
	staleness time.Duration
	log       zerolog.Logger
	metrics   *observability.Metrics

	mu         sync.Mutex
	agg        *sentiment.Aggregator
	tradesSeen int
	whaleCount int
	dropped    int
}

// NewMonitor creates a live whale monitor.
func NewMonitor(opts MonitorOptions) (*Monitor, error) {
	if opts.Filter == nil {
		return nil, fmt.Errorf("monitor requires a whale filter")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("monitor requires a quote cache")
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	staleness := opts.Staleness
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}

	return &Monitor{
		filter:    opts.Filter,
		cache:     opts.Cache,
		onAlert:   opts.OnAlert,
		queueSize: queueSize,
		staleness: staleness,
		log:       opts.Logger,
		metrics:   metrics,
		agg:       sentiment.NewAggregator(),
	}, nil
}

// Run consumes the trade and quote channels until the context is cancelled
// or both channels are closed. It returns ctx.Err() on cancellation;
// accumulated state remains readable afterwards.
func (m *Monitor) Run(ctx context.Context, trades <-chan *domain.Trade, qs <-chan *domain.Quote) error {
	queue := make(chan *domain.Trade, m.queueSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.process(ctx, queue)
	}()

	err := m.intake(ctx, trades, qs, queue)

	close(queue)
	wg.Wait()
	return err
}

// intake reads both feed channels, updates the quote cache, filters whales,
// and enqueues them. Intake never blocks on the queue: when it is full the
// oldest queued trade is dropped so the newest is admitted. Fresh trades
// matter more than a backlog that is already aging.
func (m *Monitor) intake(ctx context.Context, trades <-chan *domain.Trade, qs <-chan *domain.Quote, queue chan *domain.Trade) error {
	for trades != nil || qs != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case q, ok := <-qs:
			if !ok {
				qs = nil
				continue
			}
			if err := m.cache.Put(ctx, q); err != nil {
				m.log.Warn().Err(err).Str("symbol", q.Symbol).Msg("quote cache update failed")
			}

		case t, ok := <-trades:
			if !ok {
				trades = nil
				continue
			}

			m.mu.Lock()
			m.tradesSeen++
			m.mu.Unlock()
			m.metrics.TradesSeen.WithLabelValues(t.Symbol).Inc()

			if !m.filter.IsWhale(t) {
				continue
			}
			m.enqueue(queue, t)
		}
	}
	return nil
}

// enqueue admits a whale trade, evicting the oldest entry when full.
// Intake is the only sender, so the evict-then-send pair cannot race
// with another producer.
func (m *Monitor) enqueue(queue chan *domain.Trade, t *domain.Trade) {
	for {
		select {
		case queue <- t:
			m.metrics.QueueDepth.Set(float64(len(queue)))
			return
		default:
		}

		select {
		case old := <-queue:
			m.mu.Lock()
			m.dropped++
			m.mu.Unlock()
			m.metrics.TradesDropped.Inc()
			m.log.Warn().
				Str("symbol", old.Symbol).
				Int64("trade_id", old.ID).
				Msg("queue full, dropping oldest whale trade")
		default:
		}
	}
}

// process classifies queued whales and folds them into the sentiment tally.
func (m *Monitor) process(ctx context.Context, queue <-chan *domain.Trade) {
	for t := range queue {
		m.metrics.QueueDepth.Set(float64(len(queue)))

		start := time.Now()
		q := m.lookupQuote(ctx, t)
		ct := classify.Trade(*t, q)
		m.metrics.ClassifyLatency.Observe(time.Since(start).Seconds())
		m.metrics.TradesClassified.WithLabelValues(ct.Direction.String()).Inc()

		m.mu.Lock()
		m.whaleCount++
		m.agg.Fold(&ct)
		m.mu.Unlock()
		m.metrics.WhalesDetected.WithLabelValues(t.Symbol).Inc()

		m.log.Info().
			Str("symbol", t.Symbol).
			Float64("price", t.Price).
			Int64("size", t.Size).
			Float64("notional", t.Notional()).
			Str("direction", ct.Direction.String()).
			Float64("confidence", ct.Confidence).
			Msg("whale trade detected")

		if m.onAlert != nil {
			m.onAlert(ctx, Alert{Trade: &ct, Triggers: m.filter.Triggers(t)})
		}
	}
}

// lookupQuote fetches the cached quote for a trade, discarding entries
// older than the staleness window. A missing or stale quote returns nil
// and the trade classifies NEUTRAL.
func (m *Monitor) lookupQuote(ctx context.Context, t *domain.Trade) *domain.Quote {
	m.metrics.QuoteLookups.Inc()

	q, err := m.cache.Latest(ctx, t.Symbol)
	if err != nil {
		m.metrics.QuoteMisses.Inc()
		return nil
	}
	if t.Timestamp-q.Timestamp > m.staleness.Milliseconds() {
		m.metrics.StaleQuotes.Inc()
		return nil
	}
	return q
}

// TradesSeen returns the number of trades observed so far.
func (m *Monitor) TradesSeen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tradesSeen
}

// WhaleCount returns the number of whale trades classified so far.
func (m *Monitor) WhaleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.whaleCount
}

// Dropped returns the number of whale trades evicted under backpressure.
func (m *Monitor) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Sentiment returns a snapshot of the per-symbol sentiment tally,
// ordered by symbol ASC.
func (m *Monitor) Sentiment() []*domain.TickerSentiment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agg.Report()
}

// TopTrades returns the n largest whale trades seen so far by notional.
func (m *Monitor) TopTrades(n int) []*domain.ClassifiedTrade {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agg.Ranked(n)
}
