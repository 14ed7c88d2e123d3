// Package main provides the live whale monitor entry point.
// Consumes the provider WebSocket feed, filters and classifies whale
// trades in real time, and prints a sentiment summary on shutdown.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"whaleflow/internal/config"
	"whaleflow/internal/domain"
	"whaleflow/internal/marketdata"
	"whaleflow/internal/observability"
	"whaleflow/internal/quotes"
	redisstore "whaleflow/internal/storage/redis"
	"whaleflow/internal/stream"
	"whaleflow/internal/whale"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols (overrides config)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.App.LogLevel)

	symbols := cfg.Stream.Symbols
	if *symbolsFlag != "" {
		symbols = strings.Split(*symbolsFlag, ",")
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no symbols configured (use --symbols or stream.symbols)")
		os.Exit(1)
	}

	filter, err := whale.NewFilter(cfg.Filter.MinShares, cfg.Filter.MinValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building filter: %v\n", err)
		os.Exit(1)
	}

	cache, closeCache := createCache(cfg)
	defer closeCache()

	monitorOpts := stream.MonitorOptions{
		Filter:    filter,
		Cache:     cache,
		QueueSize: cfg.Stream.QueueSize,
		Logger:    log,
		Metrics:   observability.DefaultMetrics,
		OnAlert: func(_ context.Context, a stream.Alert) {
			t := a.Trade
			log.Info().
				Str("symbol", t.Trade.Symbol).
				Str("direction", string(t.Direction)).
				Float64("price", t.Trade.Price).
				Int64("size", t.Trade.Size).
				Float64("notional", t.Notional()).
				Float64("confidence", t.Confidence).
				Bool("dark_pool", t.Trade.IsDarkPool()).
				Strs("triggers", a.Triggers).
				Msg("whale alert")
		},
	}
	if cfg.Stream.StalenessMs > 0 {
		monitorOpts.Staleness = time.Duration(cfg.Stream.StalenessMs) * time.Millisecond
	}

	monitor, err := stream.NewMonitor(monitorOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating monitor: %v\n", err)
		os.Exit(1)
	}

	streamURL := cfg.Provider.StreamURL
	if streamURL == "" {
		streamURL = marketdata.DefaultStreamURL
	}
	feed := marketdata.NewStream(marketdata.StreamConfig{
		URL:       streamURL,
		KeyID:     cfg.Provider.KeyID,
		SecretKey: cfg.Provider.SecretKey,
		Symbols:   symbols,
	}, log)

	if cfg.App.MetricsAddr != "" {
		startMetricsServer(cfg.App.MetricsAddr, log)
	}

	trades := make(chan *domain.Trade, 256)
	quoteFeed := make(chan *domain.Quote, 256)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer close(trades)
		defer close(quoteFeed)
		if err := feed.Run(ctx, trades, quoteFeed); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("stream terminated")
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		_ = monitor.Run(ctx, trades, quoteFeed)
	}()

	log.Info().Strs("symbols", symbols).Str("url", streamURL).Msg("monitor started")
	wg.Wait()

	printSummary(monitor)
}

// createCache prefers Redis when configured so concurrent monitors share
// the latest-quote view.
func createCache(cfg *config.Config) (quotes.LatestCache, func()) {
	if cfg.Storage.RedisAddr == "" {
		return quotes.NewMemoryCache(), func() {}
	}
	client := goredis.NewClient(&goredis.Options{Addr: cfg.Storage.RedisAddr})
	return redisstore.NewQuoteCache(client), func() { _ = client.Close() }
}

func startMetricsServer(addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics server listening")
}

func printSummary(m *stream.Monitor) {
	fmt.Printf("\n=== Session Summary ===\n")
	fmt.Printf("Trades seen:  %d\n", m.TradesSeen())
	fmt.Printf("Whales found: %d\n", m.WhaleCount())
	fmt.Printf("Dropped:      %d\n", m.Dropped())
	for _, s := range m.Sentiment() {
		fmt.Printf("  %-6s buys=%d sells=%d net=%.2f (%s)\n",
			s.Symbol, s.BuyCount, s.SellCount, s.NetFlow(), s.Label())
	}
	for _, t := range m.TopTrades(5) {
		fmt.Printf("  %s %s %d @ %.2f = %.2f\n",
			t.Trade.Symbol, t.Direction, t.Trade.Size, t.Trade.Price, t.Notional())
	}
}
