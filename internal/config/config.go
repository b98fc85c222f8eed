// Package config loads YAML configuration for the backtest binaries.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Backtest BacktestConfig `yaml:"backtest"`
	Strategy StrategyConfig `yaml:"strategy"`
	Storage  StorageConfig  `yaml:"storage"`
	Exchange ExchangeConfig `yaml:"exchange"`
}

// BacktestConfig describes the simulated run.
type BacktestConfig struct {
	Symbols           []string `yaml:"symbols"`
	StartDate         string   `yaml:"start_date"` // YYYY-MM-DD
	EndDate           string   `yaml:"end_date"`   // YYYY-MM-DD
	InitialCapital    float64  `yaml:"initial_capital"`
	MarginRequirement float64  `yaml:"margin_requirement"`
	LookbackDays      int      `yaml:"lookback_days"`
	BenchmarkSymbol   string   `yaml:"benchmark_symbol"`
}

// StrategyConfig selects and parametrizes the decision source.
type StrategyConfig struct {
	Kind string `yaml:"kind"` // momentum | script | remote

	// Momentum parameters.
	ShortPeriod int     `yaml:"short_period"`
	LongPeriod  int     `yaml:"long_period"`
	Allocation  float64 `yaml:"allocation"`

	// Remote parameters.
	Endpoint string `yaml:"endpoint"`
}

// StorageConfig holds database DSNs. Empty DSNs select in-memory stores.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// ExchangeConfig holds the candle data source endpoint.
type ExchangeConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital: 100000,
			LookbackDays:   30,
		},
		Strategy: StrategyConfig{
			Kind:        "momentum",
			ShortPeriod: 5,
			LongPeriod:  20,
			Allocation:  0.25,
		},
	}
}

// Load reads the YAML configuration file at the given path on top of the
// defaults, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("ASTER_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("STRATEGY_ENDPOINT"); v != "" {
		cfg.Strategy.Endpoint = v
	}
}

// Dates parses the configured start and end dates.
func (c *BacktestConfig) Dates() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start_date: %w", err)
	}
	end, err = time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end_date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date before start_date")
	}
	return start, end, nil
}
