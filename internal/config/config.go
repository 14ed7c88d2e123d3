// Package config exposes strongly typed application configuration loaded
// from YAML, with provider credentials taken from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned when loaded settings fail validation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Credential environment variables. Kept out of YAML so config files can
// be committed.
const (
	EnvKeyID     = "APCA_API_KEY_ID"
	EnvSecretKey = "APCA_API_SECRET_KEY"
)

// App captures process-wide runtime settings.
type App struct {
	Name        string `yaml:"name"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Provider configures the market data provider endpoints.
type Provider struct {
	BaseURL   string `yaml:"base_url"`
	StreamURL string `yaml:"stream_url"`
	KeyID     string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Filter holds the whale detection thresholds. A trade qualifies when it
// meets either threshold.
type Filter struct {
	MinShares int64   `yaml:"min_shares"`
	MinValue  float64 `yaml:"min_value"`
}

// Scan configures batch scan behavior.
type Scan struct {
	Symbols     []string `yaml:"symbols"`
	Concurrency int      `yaml:"concurrency"`
	LookbackMs  int64    `yaml:"lookback_ms"`
	TopN        int      `yaml:"top_n"`
}

// Stream configures the live monitor.
type Stream struct {
	Symbols     []string `yaml:"symbols"`
	QueueSize   int      `yaml:"queue_size"`
	StalenessMs int64    `yaml:"staleness_ms"`
}

// Storage holds backend connection strings. Empty DSNs disable the
// corresponding backend.
type Storage struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
}

// Config collects every configuration leaf.
type Config struct {
	App      App      `yaml:"app"`
	Provider Provider `yaml:"provider"`
	Filter   Filter   `yaml:"filter"`
	Scan     Scan     `yaml:"scan"`
	Stream   Stream   `yaml:"stream"`
	Storage  Storage  `yaml:"storage"`
}

// Load reads a YAML file, hydrates a Config, pulls credentials from the
// environment (.env is honored when present), and validates.
func Load(path string) (*Config, error) {
	// Missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	config.Provider.KeyID = os.Getenv(EnvKeyID)
	config.Provider.SecretKey = os.Getenv(EnvSecretKey)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.Filter.MinShares < 0 {
		return fmt.Errorf("%w: min_shares must not be negative", ErrInvalidConfiguration)
	}
	if c.Filter.MinValue < 0 {
		return fmt.Errorf("%w: min_value must not be negative", ErrInvalidConfiguration)
	}
	if c.Scan.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfiguration)
	}
	if c.Scan.LookbackMs < 0 {
		return fmt.Errorf("%w: lookback_ms must not be negative", ErrInvalidConfiguration)
	}
	if c.Scan.TopN < 0 {
		return fmt.Errorf("%w: top_n must not be negative", ErrInvalidConfiguration)
	}
	if c.Stream.StalenessMs < 0 {
		return fmt.Errorf("%w: staleness_ms must not be negative", ErrInvalidConfiguration)
	}
	if c.Stream.QueueSize < 0 {
		return fmt.Errorf("%w: queue_size must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

// NewLogger builds the process logger at the configured level.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}
