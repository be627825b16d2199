// Package index reports the reference market indices shown next to an analysis
package index

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/metrics"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// lookback covers long holiday gaps while staying a small request
const lookback = 14 * 24 * time.Hour

// Service implements IndexService
type Service struct {
	client   interfaces.MarketDataClient
	symbols  map[string]models.Ticker // name -> index ticker
	provider string
	metrics  *metrics.Metrics
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates an index service for the configured indices
func NewService(client interfaces.MarketDataClient, cfg common.IndicesConfig, provider string, m *metrics.Metrics, logger *common.Logger) *Service {
	symbols := make(map[string]models.Ticker)
	for name, raw := range map[string]string{"nifty": cfg.Nifty, "sp500": cfg.SP500} {
		if raw == "" {
			continue
		}
		t, err := models.ParseTicker(raw)
		if err != nil {
			logger.Warn().Str("index", name).Str("symbol", raw).Msg("Ignoring invalid index symbol")
			continue
		}
		symbols[name] = t
	}

	return &Service{
		client:   client,
		symbols:  symbols,
		provider: provider,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Indices fetches every configured index concurrently. An index that fails
// or has fewer than two closes is logged and left out of the result.
func (s *Service) Indices(ctx context.Context) map[string]*models.IndexQuote {
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	quotes := make([]*models.IndexQuote, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			q, err := s.quote(gctx, s.symbols[name])
			if err != nil {
				s.logger.Warn().Str("index", name).Err(err).Msg("Index quote unavailable")
				return nil
			}
			quotes[i] = q
			return nil
		})
	}
	_ = g.Wait()

	result := make(map[string]*models.IndexQuote, len(names))
	for i, name := range names {
		if quotes[i] != nil {
			result[name] = quotes[i]
		}
	}
	return result
}

func (s *Service) quote(ctx context.Context, ticker models.Ticker) (*models.IndexQuote, error) {
	to := s.now()
	start := time.Now()
	series, err := s.client.GetEOD(ctx, ticker, interfaces.WithDateRange(to.Add(-lookback), to))
	s.metrics.ObserveUpstream(s.provider, "index", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	return QuoteFromSeries(ticker, series)
}

// QuoteFromSeries derives value and percent change from the last two closes
func QuoteFromSeries(ticker models.Ticker, series models.PriceSeries) (*models.IndexQuote, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("%w: %d closes for %s", common.ErrInsufficientHistory, len(series), ticker)
	}

	last, prev := series[len(series)-1], series[len(series)-2]
	if prev.Close == 0 {
		return nil, fmt.Errorf("zero previous close for %s", ticker)
	}

	return &models.IndexQuote{
		Symbol: ticker.String(),
		Value:  common.Round(last.Close, 2),
		Change: common.Round((last.Close-prev.Close)/prev.Close*100, 2),
		AsOf:   last.Date,
	}, nil
}

// Ensure Service implements IndexService
var _ interfaces.IndexService = (*Service)(nil)
