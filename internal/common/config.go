// Package common provides shared utilities for mini-analyst
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Supported market data providers
const (
	ProviderEODHD = "eodhd"
	ProviderYahoo = "yahoo"
)

// Config holds all configuration for mini-analyst
type Config struct {
	Environment string        `toml:"environment"`
	Provider    string        `toml:"provider"` // "eodhd" or "yahoo"
	Server      ServerConfig  `toml:"server"`
	Clients     ClientsConfig `toml:"clients"`
	Signal      SignalConfig  `toml:"signal"`
	Indices     IndicesConfig `toml:"indices"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Workers        int    `toml:"workers"`         // concurrent analyses allowed
	RequestTimeout string `toml:"request_timeout"` // outer per-request timeout
}

// GetRequestTimeout parses and returns the per-request timeout
func (c *ServerConfig) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetWorkers returns the worker budget, never less than one
func (c *ServerConfig) GetWorkers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
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

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	Proxy     string `toml:"proxy"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration. Commentary is disabled
// when no API key is configured.
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// SignalConfig holds the combiner weighting scheme
type SignalConfig struct {
	TechnicalWeight   float64 `toml:"technical_weight"`
	FundamentalWeight float64 `toml:"fundamental_weight"`
	BuyThreshold      float64 `toml:"buy_threshold"`
	SellThreshold     float64 `toml:"sell_threshold"`
}

// IndicesConfig names the two reference indices shown alongside analyses
type IndicesConfig struct {
	Nifty string `toml:"nifty"`
	SP500 string `toml:"sp500"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Provider:    ProviderEODHD,
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           5000,
			Workers:        4,
			RequestTimeout: "60s",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 2,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "20s",
			},
		},
		Signal: SignalConfig{
			TechnicalWeight:   1.0,
			FundamentalWeight: 1.5,
			BuyThreshold:      15,
			SellThreshold:     -15,
		},
		Indices: IndicesConfig{
			Nifty: "^NSEI",
			SP500: "^GSPC",
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

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
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

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ANALYST_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("ANALYST_HOST"); host != "" {
		config.Server.Host = host
	}

	// PORT is what most PaaS hosts inject
	for _, name := range []string{"PORT", "ANALYST_PORT"} {
		if port := os.Getenv(name); port != "" {
			if p, err := strconv.Atoi(port); err == nil {
				config.Server.Port = p
			}
		}
	}

	if workers := os.Getenv("ANALYST_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.Server.Workers = w
		}
	}

	if timeout := os.Getenv("ANALYST_REQUEST_TIMEOUT"); timeout != "" {
		config.Server.RequestTimeout = timeout
	}

	if provider := os.Getenv("ANALYST_PROVIDER"); provider != "" {
		config.Provider = strings.ToLower(provider)
	}

	if level := os.Getenv("ANALYST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := os.Getenv("ANALYST_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	for _, name := range []string{"EODHD_API_KEY", "ANALYST_EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
			break
		}
	}

	for _, name := range []string{"GEMINI_API_KEY", "ANALYST_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}
}

// Validate checks settings that have no safe fallback
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderEODHD, ProviderYahoo:
	default:
		return fmt.Errorf("unknown provider %q (want %q or %q)", c.Provider, ProviderEODHD, ProviderYahoo)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Signal.BuyThreshold <= c.Signal.SellThreshold {
		return fmt.Errorf("signal buy_threshold (%.2f) must be above sell_threshold (%.2f)",
			c.Signal.BuyThreshold, c.Signal.SellThreshold)
	}
	return nil
}

// CommentaryEnabled reports whether AI commentary can be offered
func (c *Config) CommentaryEnabled() bool {
	return c.Clients.Gemini.APIKey != ""
}
