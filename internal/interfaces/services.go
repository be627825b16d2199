package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/mini-analyst/internal/models"
)

// FetcherService gathers the market data an analysis needs
type FetcherService interface {
	// Fetch returns two years of daily bars plus a fundamentals snapshot.
	// Price failures abort; fundamentals failures degrade to nil ratios.
	Fetch(ctx context.Context, ticker models.Ticker) (*models.MarketSnapshot, error)

	// FetchSeries returns daily bars only
	FetchSeries(ctx context.Context, ticker models.Ticker) (models.PriceSeries, error)
}

// AnalysisService produces a combined signal for a single ticker
type AnalysisService interface {
	// Analyze validates the raw symbol, fetches data and combines signals
	Analyze(ctx context.Context, rawTicker string, opts models.AnalyzeOptions) (*models.Analysis, error)
}

// IndexService reports the reference indices
type IndexService interface {
	// Indices returns quotes keyed by index name; failed indices are omitted
	Indices(ctx context.Context) map[string]*models.IndexQuote
}

// UniverseService searches the known symbol list
type UniverseService interface {
	// Search matches symbol prefix first, then name substring
	Search(query string, limit int) []models.UniverseEntry

	// Lookup returns the entry for an exact symbol
	Lookup(symbol string) (models.UniverseEntry, bool)
}

// ChartService renders price charts
type ChartService interface {
	// Render writes a PNG of closes with moving-average overlays
	Render(ctx context.Context, rawTicker string, w io.Writer) error
}
