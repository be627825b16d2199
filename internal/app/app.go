package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bobmcallan/mini-analyst/internal/clients/eodhd"
	"github.com/bobmcallan/mini-analyst/internal/clients/gemini"
	"github.com/bobmcallan/mini-analyst/internal/clients/yahoo"
	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/metrics"
	"github.com/bobmcallan/mini-analyst/internal/services/analysis"
	"github.com/bobmcallan/mini-analyst/internal/services/chart"
	"github.com/bobmcallan/mini-analyst/internal/services/fetcher"
	"github.com/bobmcallan/mini-analyst/internal/services/index"
	"github.com/bobmcallan/mini-analyst/internal/services/universe"
	"github.com/bobmcallan/mini-analyst/internal/signals"
)

// App holds the configured clients and services. It carries no request
// state and is shared by all HTTP handlers.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Metrics      *metrics.Metrics
	MarketClient interfaces.MarketDataClient
	GeminiClient interfaces.GeminiClient // nil when commentary is disabled
	Fetcher      interfaces.FetcherService
	Analysis     interfaces.AnalysisService
	Indices      interfaces.IndexService
	Universe     interfaces.UniverseService
	Chart        interfaces.ChartService
	StartupTime  time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: explicit path, ANALYST_CONFIG,
// next to the binary, then config/ for development.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("ANALYST_CONFIG"); env != "" {
		return env
	}
	path := filepath.Join(getBinaryDir(), "mini-analyst.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return "config/mini-analyst.toml"
}

// NewApp loads configuration and builds the App from it.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return New(context.Background(), config, logger, prometheus.NewRegistry())
}

// New wires clients and services from an already loaded config. Metrics are
// registered on reg so tests can use a private registry.
func New(ctx context.Context, config *common.Config, logger *common.Logger, reg *prometheus.Registry) (*App, error) {
	startupStart := time.Now()

	m := metrics.New(reg)

	marketClient, err := newMarketClient(config, logger)
	if err != nil {
		return nil, err
	}

	// A typed nil would defeat the nil check in the analysis service
	var geminiClient interfaces.GeminiClient
	if config.CommentaryEnabled() {
		gc, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - commentary disabled")
		} else {
			geminiClient = gc
		}
	} else {
		logger.Info().Msg("Gemini API key not configured - commentary disabled")
	}

	universeService, err := universe.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker universe: %w", err)
	}

	fetcherService := fetcher.NewService(marketClient, config.Provider, m, logger)
	combiner := signals.NewCombiner(config.Signal)

	a := &App{
		Config:       config,
		Logger:       logger,
		Metrics:      m,
		MarketClient: marketClient,
		GeminiClient: geminiClient,
		Fetcher:      fetcherService,
		Analysis:     analysis.NewService(fetcherService, combiner, geminiClient, m, logger),
		Indices:      index.NewService(marketClient, config.Indices, config.Provider, m, logger),
		Universe:     universeService,
		Chart:        chart.NewService(fetcherService, universeService, logger),
		StartupTime:  startupStart,
	}

	logger.Info().
		Str("provider", config.Provider).
		Int("universe", universeService.Len()).
		Bool("commentary", geminiClient != nil).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// newMarketClient builds the configured price and fundamentals provider
func newMarketClient(config *common.Config, logger *common.Logger) (interfaces.MarketDataClient, error) {
	switch config.Provider {
	case common.ProviderEODHD:
		cfg := config.Clients.EODHD
		if cfg.APIKey == "" {
			logger.Warn().Msg("EODHD API key not configured - requests will be rejected upstream")
		}
		opts := []eodhd.ClientOption{
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(cfg.RateLimit),
			eodhd.WithTimeout(cfg.GetTimeout()),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, eodhd.WithBaseURL(cfg.BaseURL))
		}
		return eodhd.NewClient(cfg.APIKey, opts...), nil

	case common.ProviderYahoo:
		cfg := config.Clients.Yahoo
		opts := []yahoo.ClientOption{
			yahoo.WithLogger(logger),
			yahoo.WithRateLimit(cfg.RateLimit),
			yahoo.WithTimeout(cfg.GetTimeout()),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, yahoo.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Proxy != "" {
			opts = append(opts, yahoo.WithProxy(cfg.Proxy))
		}
		return yahoo.NewClient(opts...), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", config.Provider)
	}
}
