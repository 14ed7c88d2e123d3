// Package main regenerates scan reports from persisted sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"whaleflow/internal/config"
	"whaleflow/internal/reporting"
	chstore "whaleflow/internal/storage/clickhouse"
	pgstore "whaleflow/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration file")
	sessionID := flag.String("session-id", "", "Scan session to report on (required)")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	topN := flag.Int("top-n", 0, "Largest trades to include (0 uses the default)")
	flag.Parse()

	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "Error: --session-id is required")
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.PostgresDSN == "" || cfg.Storage.ClickhouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: storage.postgres_dsn and storage.clickhouse_dsn are required")
		os.Exit(1)
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to ClickHouse: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	gen := reporting.NewGenerator(
		pgstore.NewSessionStore(pool),
		pgstore.NewClassifiedTradeStore(pool),
		chstore.NewSentimentStore(conn),
	)
	if *topN > 0 {
		gen = gen.WithTopN(*topN)
	}

	report, err := gen.Generate(ctx, *sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	files := map[string]string{
		"WHALE_REPORT.md":  reporting.RenderMarkdown(report),
		"sentiment.csv":    reporting.RenderCSV(report.Sentiment),
		"whale_trades.csv": reporting.RenderTradesCSV(report.TopTrades),
	}
	for name, body := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}
