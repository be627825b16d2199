// Package fetcher gathers price history and fundamentals for one ticker
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/metrics"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// HistoryYears is the trailing window requested from the provider
const HistoryYears = 2

// Service implements FetcherService
type Service struct {
	client   interfaces.MarketDataClient
	provider string
	metrics  *metrics.Metrics
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a new fetcher over a market data client. provider
// labels upstream metrics; m may be nil.
func NewService(client interfaces.MarketDataClient, provider string, m *metrics.Metrics, logger *common.Logger) *Service {
	return &Service{
		client:   client,
		provider: provider,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Fetch returns the two-year series and the fundamentals snapshot. Price
// failures abort the request; fundamentals failures are logged and leave
// Fundamentals carrying only the ticker.
func (s *Service) Fetch(ctx context.Context, ticker models.Ticker) (*models.MarketSnapshot, error) {
	series, err := s.FetchSeries(ctx, ticker)
	if err != nil {
		return nil, err
	}

	snapshot := &models.MarketSnapshot{
		Ticker:    ticker,
		Series:    series,
		FetchedAt: s.now(),
	}

	start := time.Now()
	fundamentals, err := s.client.GetFundamentals(ctx, ticker)
	s.metrics.ObserveUpstream(s.provider, "fundamentals", err, time.Since(start))
	if err != nil || fundamentals == nil {
		s.logger.Warn().Str("ticker", ticker.String()).Err(err).Msg("Fundamentals unavailable, continuing with price data only")
		fundamentals = &models.Fundamentals{Ticker: ticker.String()}
	}

	// Providers without a quote in fundamentals fall back to the last close
	if fundamentals.CurrentPrice == nil {
		if last, ok := series.Latest(); ok {
			price := last.Close
			fundamentals.CurrentPrice = &price
		}
	}

	snapshot.Fundamentals = fundamentals
	return snapshot, nil
}

// FetchSeries returns the trailing two years of daily bars, ascending
func (s *Service) FetchSeries(ctx context.Context, ticker models.Ticker) (models.PriceSeries, error) {
	to := s.now()
	from := to.AddDate(-HistoryYears, 0, 0)

	start := time.Now()
	series, err := s.client.GetEOD(ctx, ticker, interfaces.WithDateRange(from, to))
	s.metrics.ObserveUpstream(s.provider, "eod", err, time.Since(start))

	if err != nil {
		if errors.Is(err, common.ErrSymbolNotFound) {
			return nil, fmt.Errorf("%w: no market data for %s: %w", common.ErrInvalidTicker, ticker, err)
		}
		s.logger.Error().Str("ticker", ticker.String()).Err(err).Msg("Price history fetch failed")
		return nil, fmt.Errorf("%w: price history for %s: %v", common.ErrDataUnavailable, ticker, err)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no price history for %s: %w", common.ErrInvalidTicker, ticker, common.ErrSymbolNotFound)
	}

	s.logger.Debug().Str("ticker", ticker.String()).Int("bars", len(series)).Msg("Fetched price history")
	return series, nil
}

// Ensure Service implements FetcherService
var _ interfaces.FetcherService = (*Service)(nil)
