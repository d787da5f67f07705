// Package common provides shared utilities for Tally
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Tally
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Benchmark   BenchmarkConfig `toml:"benchmark"`
	Valuation   ValuationConfig `toml:"valuation"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds path configuration for the two storage areas.
type StorageConfig struct {
	Market  AreaConfig `toml:"market"`  // Cached statements + prices (file-based JSON)
	Reports AreaConfig `toml:"reports"` // Analysis reports + system KV (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// BenchmarkConfig selects the market index used for beta/alpha estimation.
type BenchmarkConfig struct {
	Ticker   string `toml:"ticker"`   // index ticker, e.g. "GSPC.INDX"
	Lookback string `toml:"lookback"` // duration of price history to fetch
}

// GetLookback parses and returns the lookback duration
func (c *BenchmarkConfig) GetLookback() time.Duration {
	d, err := time.ParseDuration(c.Lookback)
	if err != nil {
		return 2 * 365 * 24 * time.Hour
	}
	return d
}

// ValuationConfig holds DCF and cost-of-capital assumptions.
type ValuationConfig struct {
	ProjectionYears int     `toml:"projection_years"`
	TerminalGrowth  float64 `toml:"terminal_growth"`
	RiskFreeRate    float64 `toml:"risk_free_rate"`
	MarketPremium   float64 `toml:"market_premium"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Market:  AreaConfig{Path: "data/market"},
			Reports: AreaConfig{Path: "data/reports"},
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Benchmark: BenchmarkConfig{
			Ticker:   "GSPC.INDX",
			Lookback: "17520h", // ~2 years of daily bars
		},
		Valuation: ValuationConfig{
			ProjectionYears: 5,
			TerminalGrowth:  0.02,
			RiskFreeRate:    0.045,
			MarketPremium:   0.055,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TALLY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TALLY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TALLY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TALLY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("TALLY_DATA_PATH"); path != "" {
		config.Storage.Market.Path = filepath.Join(path, "market")
		config.Storage.Reports.Path = filepath.Join(path, "reports")
	}

	for _, env := range []string{"EODHD_API_KEY", "TALLY_EODHD_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			config.Clients.EODHD.APIKey = key
		}
	}

	if ticker := os.Getenv("TALLY_BENCHMARK"); ticker != "" {
		config.Benchmark.Ticker = ticker
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
