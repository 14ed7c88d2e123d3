package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvKeyID, "key-123")
	t.Setenv(EnvSecretKey, "secret-456")

	path := writeConfig(t, `
app:
  name: whaleflow
  metrics_addr: ":9090"
  log_level: debug
provider:
  base_url: https://data.example.com
  stream_url: wss://stream.example.com/v2/iex
filter:
  min_shares: 10000
  min_value: 500000
scan:
  symbols: [AAPL, TSLA]
  concurrency: 8
  lookback_ms: 300000
  top_n: 5
stream:
  symbols: [AAPL]
  queue_size: 2048
  staleness_ms: 300000
storage:
  redis_addr: localhost:6379
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "whaleflow" {
		t.Errorf("App.Name = %q, want whaleflow", cfg.App.Name)
	}
	if cfg.Provider.KeyID != "key-123" || cfg.Provider.SecretKey != "secret-456" {
		t.Errorf("credentials not read from environment: %q / %q", cfg.Provider.KeyID, cfg.Provider.SecretKey)
	}
	if cfg.Filter.MinShares != 10000 || cfg.Filter.MinValue != 500000 {
		t.Errorf("filter thresholds = %d / %f", cfg.Filter.MinShares, cfg.Filter.MinValue)
	}
	if len(cfg.Scan.Symbols) != 2 || cfg.Scan.Symbols[1] != "TSLA" {
		t.Errorf("Scan.Symbols = %v", cfg.Scan.Symbols)
	}
	if cfg.Stream.QueueSize != 2048 {
		t.Errorf("Stream.QueueSize = %d, want 2048", cfg.Stream.QueueSize)
	}
	if cfg.Storage.RedisAddr != "localhost:6379" {
		t.Errorf("Storage.RedisAddr = %q", cfg.Storage.RedisAddr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoadRejectsNegativeThresholds(t *testing.T) {
	path := writeConfig(t, `
filter:
  min_shares: -1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected validation error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"negative min_value", Config{Filter: Filter{MinValue: -5}}, true},
		{"negative concurrency", Config{Scan: Scan{Concurrency: -1}}, true},
		{"negative queue_size", Config{Stream: Stream{QueueSize: -1}}, true},
		{"negative top_n", Config{Scan: Scan{TopN: -1}}, true},
		{"negative lookback", Config{Scan: Scan{LookbackMs: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("warn")
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("GetLevel() = %v, want warn", logger.GetLevel())
	}

	fallback := NewLogger("not-a-level")
	if fallback.GetLevel() != zerolog.InfoLevel {
		t.Errorf("GetLevel() = %v, want info fallback", fallback.GetLevel())
	}
}
