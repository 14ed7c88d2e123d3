// Package main provides the batch scan entry point.
// Executes: fetch → whale filter → classification → sentiment → report
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"whaleflow/internal/config"
	"whaleflow/internal/marketdata"
	"whaleflow/internal/observability"
	"whaleflow/internal/reporting"
	"whaleflow/internal/scan"
	"whaleflow/internal/storage"
	chstore "whaleflow/internal/storage/clickhouse"
	"whaleflow/internal/storage/memory"
	"whaleflow/internal/storage/migrations"
	pgstore "whaleflow/internal/storage/postgres"
	"whaleflow/internal/whale"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols (overrides config)")
	fromFlag := flag.String("from", "", "Window start, RFC3339 (default: 15 minutes ago)")
	toFlag := flag.String("to", "", "Window end, RFC3339 (default: now)")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	useMemory := flag.Bool("use-memory", false, "Use in-memory stores instead of databases")
	fromArchive := flag.Bool("from-archive", false, "Replay trades from the archive instead of the provider")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.App.LogLevel)

	symbols := cfg.Scan.Symbols
	if *symbolsFlag != "" {
		symbols = strings.Split(*symbolsFlag, ",")
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no symbols configured (use --symbols or scan.symbols)")
		os.Exit(1)
	}

	from, to, err := parseWindow(*fromFlag, *toFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing window: %v\n", err)
		os.Exit(1)
	}

	filter, err := whale.NewFilter(cfg.Filter.MinShares, cfg.Filter.MinValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building filter: %v\n", err)
		os.Exit(1)
	}

	clientOpts := []marketdata.ClientOption{}
	if cfg.Provider.BaseURL != "" {
		clientOpts = append(clientOpts, marketdata.WithBaseURL(cfg.Provider.BaseURL))
	}
	client := marketdata.NewClient(cfg.Provider.KeyID, cfg.Provider.SecretKey, clientOpts...)

	stores, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting stores: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	opts := scan.RunnerOptions{
		TradeSource:    client,
		QuoteSource:    client,
		Filter:         filter,
		Concurrency:    cfg.Scan.Concurrency,
		TopN:           cfg.Scan.TopN,
		SessionStore:   stores.sessions,
		TradeStore:     stores.trades,
		SentimentStore: stores.sentiment,
		Archive:        stores.archive,
		Logger:         log,
		Metrics:        observability.DefaultMetrics,
	}
	if cfg.Scan.LookbackMs > 0 {
		opts.Lookback = time.Duration(cfg.Scan.LookbackMs) * time.Millisecond
	}
	if *fromArchive {
		if stores.archive == nil {
			fmt.Fprintln(os.Stderr, "Error: --from-archive requires storage.clickhouse_dsn")
			os.Exit(1)
		}
		opts.TradeSource = scan.NewArchiveSource(stores.archive)
		// Replayed trades are already archived.
		opts.Archive = nil
	}

	runner, err := scan.NewRunner(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating runner: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Whale Scan ===\n")
	fmt.Printf("Symbols: %s\n", strings.Join(symbols, ", "))
	fmt.Printf("Window:  %s → %s\n",
		time.UnixMilli(from).UTC().Format(time.RFC3339),
		time.UnixMilli(to).UTC().Format(time.RFC3339))

	result, err := runner.Run(ctx, symbols, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan error: %v\n", err)
		os.Exit(1)
	}

	printSummary(result)

	if stores.sessions != nil {
		if err := writeReport(ctx, stores, result.SessionID, cfg.Scan.TopN, *outputDir); err != nil {
			fmt.Fprintf(os.Stderr, "Report error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nReport written to %s\n", *outputDir)
	}
}

// parseWindow resolves the scan window, defaulting to the last 15 minutes.
func parseWindow(fromStr, toStr string) (int64, int64, error) {
	now := time.Now()
	to := now
	from := now.Add(-15 * time.Minute)

	var err error
	if toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			return 0, 0, fmt.Errorf("parse --to: %w", err)
		}
		from = to.Add(-15 * time.Minute)
	}
	if fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return 0, 0, fmt.Errorf("parse --from: %w", err)
		}
	}
	return from.UnixMilli(), to.UnixMilli(), nil
}

type scanStores struct {
	sessions  storage.SessionStore
	trades    storage.ClassifiedTradeStore
	sentiment storage.SentimentStore
	archive   storage.TradeArchive
}

// createStores wires persistence based on configured DSNs. With --use-memory
// or no DSNs at all, in-memory stores back the run so the report still works.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool) (*scanStores, func(), error) {
	noop := func() {}

	if useMemory || (cfg.Storage.PostgresDSN == "" && cfg.Storage.ClickhouseDSN == "") {
		return &scanStores{
			sessions:  memory.NewSessionStore(),
			trades:    memory.NewClassifiedTradeStore(),
			sentiment: memory.NewSentimentStore(),
			archive:   memory.NewTradeArchive(),
		}, noop, nil
	}

	stores := &scanStores{}
	cleanups := []func(){}
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.sessions = pgstore.NewSessionStore(pool)
		stores.trades = pgstore.NewClassifiedTradeStore(pool)
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("clickhouse: %w", err)
		}
		cleanups = append(cleanups, func() { _ = conn.Close() })
		stores.sentiment = chstore.NewSentimentStore(conn)
		stores.archive = chstore.NewTradeArchive(conn)
	}

	return stores, cleanup, nil
}

func printSummary(result *scan.Result) {
	fmt.Printf("\nScan %s completed in %s:\n", result.SessionID[:12], result.Duration.Round(time.Millisecond))
	fmt.Printf("  Trades seen:  %d\n", result.TradesSeen)
	fmt.Printf("  Whales found: %d\n", result.WhalesFound)
	for _, s := range result.Sentiment {
		fmt.Printf("  %-6s buys=%d sells=%d net=%.2f (%s)\n",
			s.Symbol, s.BuyCount, s.SellCount, s.NetFlow(), s.Label())
	}
	for symbol, err := range result.Errors {
		fmt.Fprintf(os.Stderr, "  warning: %s failed: %v\n", symbol, err)
	}
}

func writeReport(ctx context.Context, stores *scanStores, sessionID string, topN int, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	gen := reporting.NewGenerator(stores.sessions, stores.trades, stores.sentiment)
	if topN > 0 {
		gen = gen.WithTopN(topN)
	}
	report, err := gen.Generate(ctx, sessionID)
	if err != nil {
		return err
	}

	files := map[string]string{
		"WHALE_REPORT.md":  reporting.RenderMarkdown(report),
		"sentiment.csv":    reporting.RenderCSV(report.Sentiment),
		"whale_trades.csv": reporting.RenderTradesCSV(report.TopTrades),
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}
