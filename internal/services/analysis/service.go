// Package analysis runs the full single-ticker pipeline: validate, fetch,
// compute indicators, combine and render the response
package analysis

import (
	"context"
	"time"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/metrics"
	"github.com/bobmcallan/mini-analyst/internal/models"
	"github.com/bobmcallan/mini-analyst/internal/signals"
)

// Decimal places for response values
const (
	pricePlaces = 2
	ratioPlaces = 2
)

// Service implements AnalysisService
type Service struct {
	fetcher  interfaces.FetcherService
	computer *signals.Computer
	combiner *signals.Combiner
	gemini   interfaces.GeminiClient // nil disables commentary
	metrics  *metrics.Metrics
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a new analysis service. gemini and m may be nil.
func NewService(fetcher interfaces.FetcherService, combiner *signals.Combiner, gemini interfaces.GeminiClient, m *metrics.Metrics, logger *common.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		computer: signals.NewComputer(),
		combiner: combiner,
		gemini:   gemini,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze validates the symbol, fetches its data and produces the combined
// signal. Fetch errors abort with no partial result.
func (s *Service) Analyze(ctx context.Context, rawTicker string, opts models.AnalyzeOptions) (*models.Analysis, error) {
	ticker, err := models.ParseTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.fetcher.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	tech := s.computer.ComputeTechnical(snapshot.Series)
	ratios := signals.NormalizeFundamentals(snapshot.Fundamentals)
	result := s.combiner.Combine(tech, ratios)

	analysis := s.build(ticker, snapshot, tech, ratios, result)
	if opts.Debate {
		analysis.Debate = roundDebate(s.combiner.Debate(result))
	}

	if opts.Commentary && s.gemini != nil {
		commentary, err := s.gemini.SummarizeAnalysis(ctx, analysis)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker.String()).Err(err).Msg("Commentary generation failed")
		} else {
			analysis.Commentary = commentary
		}
	}

	s.metrics.ObserveSignal(string(analysis.Signal))
	s.logger.Info().
		Str("ticker", ticker.String()).
		Str("signal", string(analysis.Signal)).
		Float64("score", analysis.Score).
		Int("bars", len(snapshot.Series)).
		Int("ratios", ratios.Available()).
		Msg("Analysis complete")

	return analysis, nil
}

func (s *Service) build(ticker models.Ticker, snap *models.MarketSnapshot, tech *models.TechnicalIndicators, ratios *models.FundamentalRatios, result models.SignalResult) *models.Analysis {
	f := snap.Fundamentals
	if f == nil {
		f = &models.Fundamentals{}
	}

	company := f.Name
	if company == "" {
		company = ticker.String()
	}

	contributions := make([]models.Contribution, len(result.Contributions))
	for i, ct := range result.Contributions {
		ct.Value = common.Round(ct.Value, ratioPlaces)
		ct.Points = common.Round(ct.Points, ratioPlaces)
		ct.Weighted = common.Round(ct.Weighted, ratioPlaces)
		contributions[i] = ct
	}

	return &models.Analysis{
		Success:    true,
		Symbol:     ticker,
		Company:    company,
		Signal:     result.Signal,
		Score:      common.Round(result.Score, ratioPlaces),
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
		Price:      roundSummary(signals.Summarize(snap.Series)),
		Technical: models.TechnicalReport{
			GroupScore: roundGroup(result.Technical),
			Indicators: roundTechnical(tech),
		},
		Fundamental: models.FundamentalReport{
			GroupScore: roundGroup(result.Fundamental),
			Ratios:     roundRatios(ratios),
			CompanyInfo: models.CompanyInfo{
				Name:         company,
				Sector:       f.Sector,
				Industry:     f.Industry,
				Currency:     f.Currency,
				MarketCap:    f.MarketCap,
				CurrentPrice: common.RoundPtr(f.CurrentPrice, pricePlaces),
			},
		},
		Contributions: contributions,
		GeneratedAt:   s.now().UTC(),
	}
}

func roundGroup(g models.GroupScore) models.GroupScore {
	g.Score = common.Round(g.Score, ratioPlaces)
	g.Points = common.Round(g.Points, ratioPlaces)
	return g
}

func roundTechnical(t *models.TechnicalIndicators) *models.TechnicalIndicators {
	return &models.TechnicalIndicators{
		CurrentPrice: common.RoundPtr(t.CurrentPrice, pricePlaces),
		SMA50:        common.RoundPtr(t.SMA50, pricePlaces),
		SMA200:       common.RoundPtr(t.SMA200, pricePlaces),
		RSI:          common.RoundPtr(t.RSI, ratioPlaces),
		RSIWeekly:    common.RoundPtr(t.RSIWeekly, ratioPlaces),
		Volatility:   common.RoundPtr(t.Volatility, ratioPlaces),
		Return1Y:     common.RoundPtr(t.Return1Y, ratioPlaces),
		Unavailable:  t.Unavailable,
	}
}

func roundRatios(r *models.FundamentalRatios) *models.FundamentalRatios {
	return &models.FundamentalRatios{
		PE:                common.RoundPtr(r.PE, ratioPlaces),
		ROEPct:            common.RoundPtr(r.ROEPct, ratioPlaces),
		DebtToEquity:      common.RoundPtr(r.DebtToEquity, ratioPlaces),
		ProfitMarginPct:   common.RoundPtr(r.ProfitMarginPct, ratioPlaces),
		RevenueGrowthPct:  common.RoundPtr(r.RevenueGrowthPct, ratioPlaces),
		EarningsGrowthPct: common.RoundPtr(r.EarningsGrowthPct, ratioPlaces),
		FreeCashflow:      r.FreeCashflow,
		MarketCap:         r.MarketCap,
	}
}

func roundSummary(p *models.PriceSummary) *models.PriceSummary {
	p.LastClose = common.Round(p.LastClose, pricePlaces)
	p.PrevClose = common.RoundPtr(p.PrevClose, pricePlaces)
	p.ChangePct = common.RoundPtr(p.ChangePct, ratioPlaces)
	p.High52Week = common.Round(p.High52Week, pricePlaces)
	p.Low52Week = common.Round(p.Low52Week, pricePlaces)
	return p
}

func roundDebate(d *models.Debate) *models.Debate {
	d.FinalScore = common.Round(d.FinalScore, 1)
	return d
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
