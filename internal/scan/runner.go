// Package scan runs batch whale scans over historical trade data.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"whaleflow/internal/classify"
	"whaleflow/internal/domain"
	"whaleflow/internal/idhash"
	"whaleflow/internal/observability"
	"whaleflow/internal/quotes"
	"whaleflow/internal/sentiment"
	"whaleflow/internal/storage"
	"whaleflow/internal/whale"
)

// Default configuration values.
const (
	DefaultConcurrency = 4
	DefaultLookback    = 5 * time.Minute
	DefaultTopN        = 5
)

// TradeSource fetches historical trades for one symbol.
type TradeSource interface {
	// Trades returns trades within [from, to] (inclusive, ms), ordered by
	// timestamp ASC.
	Trades(ctx context.Context, symbol string, from, to int64) ([]*domain.Trade, error)
}

// Result is the outcome of one batch scan.
type Result struct {
	SessionID   string
	StartTime   int64
	EndTime     int64
	TradesSeen  int
	WhalesFound int

	// Sentiment holds per-symbol accumulators, ordered by symbol ASC.
	Sentiment []*domain.TickerSentiment

	// TopTrades holds the largest whale trades by notional value.
	TopTrades []*domain.ClassifiedTrade

	// Whales holds every classified whale trade, for reporting and persistence.
	Whales []*domain.ClassifiedTrade

	// HighConfNetFlow maps symbol to net flow counting only
	// classifications at or above the high-confidence threshold.
	HighConfNetFlow map[string]float64

	// Errors holds per-symbol failures. Symbols that failed contribute
	// nothing to the aggregates but do not abort the scan.
	Errors map[string]error

	Duration time.Duration
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	TradeSource TradeSource
	QuoteSource quotes.Source
	Filter      *whale.Filter

	// Concurrency bounds the number of symbols scanned in parallel.
	// Default: 4.
	Concurrency int

	// Lookback is the quote staleness window. Default: 5 minutes.
	Lookback time.Duration

	// TopN is the size of the ranked trade list. Default: 5.
	TopN int

	// Optional persistence. Nil stores are skipped.
	SessionStore   storage.SessionStore
	TradeStore     storage.ClassifiedTradeStore
	SentimentStore storage.SentimentStore
	Archive        storage.TradeArchive

	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// Runner executes batch scans: fetch, filter, classify, aggregate.
type Runner struct {
	source      TradeSource
	quoteSource quotes.Source
	filter      *whale.Filter
	concurrency int
	lookback    time.Duration
	topN        int

	sessionStore   storage.SessionStore
	tradeStore     storage.ClassifiedTradeStore
	sentimentStore storage.SentimentStore
	archive        storage.TradeArchive

	log     zerolog.Logger
	metrics *observability.Metrics
}

// NewRunner creates a new scan runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.TradeSource == nil {
		return nil, fmt.Errorf("scan runner requires a trade source")
	}
	if opts.QuoteSource == nil {
		return nil, fmt.Errorf("scan runner requires a quote source")
	}
	if opts.Filter == nil {
		return nil, fmt.Errorf("scan runner requires a whale filter")
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	lookback := opts.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}

	return &Runner{
		source:         opts.TradeSource,
		quoteSource:    opts.QuoteSource,
		filter:         opts.Filter,
		concurrency:    concurrency,
		lookback:       lookback,
		topN:           topN,
		sessionStore:   opts.SessionStore,
		tradeStore:     opts.TradeStore,
		sentimentStore: opts.SentimentStore,
		archive:        opts.Archive,
		log:            opts.Logger,
		metrics:        metrics,
	}, nil
}

// symbolResult carries one worker's output back to the merge step.
type symbolResult struct {
	symbol string
	agg    *sentiment.Aggregator
	seen   int
	whales int
	raw    []*domain.Trade
	err    error
}

// Run scans all symbols within [from, to] and returns the merged result.
// Per-symbol failures are collected in Result.Errors; the scan fails
// outright only when the context is cancelled.
func (r *Runner) Run(ctx context.Context, symbols []string, from, to int64) (*Result, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("scan requires at least one symbol")
	}
	if from > to {
		return nil, fmt.Errorf("scan window is inverted: from %d > to %d", from, to)
	}

	started := time.Now()
	r.log.Info().
		Strs("symbols", symbols).
		Int64("from", from).
		Int64("to", to).
		Int("concurrency", r.concurrency).
		Msg("starting batch scan")

	results := make(chan symbolResult, len(symbols))
	sem := make(chan struct{}, r.concurrency)

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- symbolResult{symbol: symbol, err: ctx.Err()}
				return
			}

			results <- r.scanSymbol(ctx, symbol, from, to)
		}(symbol)
	}
	wg.Wait()
	close(results)

	// Merge once, after all workers are done. Fold order within one
	// symbol follows the source's timestamp order; symbols merge in
	// completion order, which is irrelevant to the final accumulators.
	merged := sentiment.NewAggregator()
	res := &Result{
		StartTime: from,
		EndTime:   to,
		Errors:    make(map[string]error),
	}
	var allRaw []*domain.Trade

	for sr := range results {
		if sr.err != nil {
			r.log.Warn().Err(sr.err).Str("symbol", sr.symbol).Msg("symbol scan failed")
			r.metrics.SymbolErrors.WithLabelValues(sr.symbol).Inc()
			res.Errors[sr.symbol] = sr.err
			continue
		}
		res.TradesSeen += sr.seen
		res.WhalesFound += sr.whales
		merged.Merge(sr.agg)
		allRaw = append(allRaw, sr.raw...)
	}

	if ctx.Err() != nil {
		r.metrics.ScansTotal.WithLabelValues("cancelled").Inc()
		return nil, ctx.Err()
	}

	res.Sentiment = merged.Report()
	res.TopTrades = merged.Ranked(r.topN)
	res.Whales = merged.Ranked(0)
	res.HighConfNetFlow = make(map[string]float64, len(res.Sentiment))
	for _, row := range res.Sentiment {
		res.HighConfNetFlow[row.Symbol] = merged.HighConfNetFlow(row.Symbol)
	}
	res.Duration = time.Since(started)

	createdAt := time.Now().UnixMilli()
	res.SessionID = idhash.ComputeSessionID(symbols, from, to, r.filter.MinShares(), r.filter.MinValue())

	if err := r.persist(ctx, res, symbols, allRaw, createdAt); err != nil {
		r.metrics.ScansTotal.WithLabelValues("persist_failed").Inc()
		return res, fmt.Errorf("persist scan results: %w", err)
	}

	status := "ok"
	if len(res.Errors) > 0 {
		status = "partial"
	}
	r.metrics.ScansTotal.WithLabelValues(status).Inc()
	r.metrics.ScanDuration.Observe(res.Duration.Seconds())

	r.log.Info().
		Str("session_id", res.SessionID).
		Int("trades_seen", res.TradesSeen).
		Int("whales_found", res.WhalesFound).
		Int("failed_symbols", len(res.Errors)).
		Dur("duration", res.Duration).
		Msg("batch scan complete")

	return res, nil
}

// scanSymbol processes one symbol: fetch trades and quotes, filter whales,
// classify against the quote snapshot, fold into a local aggregator.
func (r *Runner) scanSymbol(ctx context.Context, symbol string, from, to int64) symbolResult {
	sr := symbolResult{symbol: symbol, agg: sentiment.NewAggregator()}

	trades, err := r.source.Trades(ctx, symbol, from, to)
	if err != nil {
		sr.err = fmt.Errorf("fetch trades: %w", err)
		return sr
	}

	// Quotes are fetched once per symbol, extended backwards by the
	// lookback so trades near the window start can still resolve.
	qs, err := r.quoteSource.Quotes(ctx, symbol, from-r.lookback.Milliseconds(), to)
	if err != nil {
		sr.err = fmt.Errorf("fetch quotes: %w", err)
		return sr
	}
	series := quotes.NewSeries(symbol, qs, r.lookback.Milliseconds())

	sr.raw = trades
	for _, t := range trades {
		sr.seen++
		r.metrics.TradesSeen.WithLabelValues(symbol).Inc()

		if !r.filter.IsWhale(t) {
			continue
		}
		sr.whales++
		r.metrics.WhalesDetected.WithLabelValues(symbol).Inc()

		start := time.Now()
		r.metrics.QuoteLookups.Inc()
		q, err := series.At(t.Timestamp)
		if err != nil {
			// Missing quote degrades to NEUTRAL, the trade still counts.
			r.metrics.QuoteMisses.Inc()
			q = nil
		}

		ct := classify.Trade(*t, q)
		r.metrics.ClassifyLatency.Observe(time.Since(start).Seconds())
		r.metrics.TradesClassified.WithLabelValues(ct.Direction.String()).Inc()
		sr.agg.Fold(&ct)
	}

	return sr
}

// persist writes the session, whale trades, sentiment rows, and raw archive
// to whichever stores are configured.
func (r *Runner) persist(ctx context.Context, res *Result, symbols []string, raw []*domain.Trade, createdAt int64) error {
	if r.sessionStore != nil {
		session := &domain.ScanSession{
			SessionID:   res.SessionID,
			Symbols:     symbols,
			StartTime:   res.StartTime,
			EndTime:     res.EndTime,
			MinShares:   r.filter.MinShares(),
			MinValue:    r.filter.MinValue(),
			TradesSeen:  res.TradesSeen,
			WhalesFound: res.WhalesFound,
			CreatedAt:   createdAt,
		}
		if err := r.sessionStore.Insert(ctx, session); err != nil {
			// The session ID is content-derived, so a duplicate means this
			// exact scan was already persisted. Skip the rewrite.
			if errors.Is(err, storage.ErrDuplicateKey) {
				r.log.Info().Str("session_id", res.SessionID).Msg("scan already persisted, skipping")
				return nil
			}
			r.metrics.StoreErrors.WithLabelValues("sessions").Inc()
			return fmt.Errorf("insert session: %w", err)
		}
	}

	if r.tradeStore != nil && len(res.Whales) > 0 {
		if err := r.tradeStore.InsertBulk(ctx, res.SessionID, res.Whales); err != nil {
			r.metrics.StoreErrors.WithLabelValues("whale_trades").Inc()
			return fmt.Errorf("insert whale trades: %w", err)
		}
	}

	if r.sentimentStore != nil && len(res.Sentiment) > 0 {
		if err := r.sentimentStore.InsertBulk(ctx, res.SessionID, res.Sentiment); err != nil {
			r.metrics.StoreErrors.WithLabelValues("sentiment").Inc()
			return fmt.Errorf("insert sentiment rows: %w", err)
		}
	}

	if r.archive != nil && len(raw) > 0 {
		if err := r.archive.InsertBulk(ctx, raw); err != nil {
			r.metrics.StoreErrors.WithLabelValues("trade_archive").Inc()
			return fmt.Errorf("archive raw trades: %w", err)
		}
	}

	return nil
}
