// Package interfaces defines service contracts for mini-analyst
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/mini-analyst/internal/models"
)

// MarketDataClient provides price history and fundamentals for a ticker.
// Implementations return errors wrapping common.ErrSymbolNotFound when the
// provider does not know the symbol.
type MarketDataClient interface {
	// GetEOD retrieves daily bars in ascending date order
	GetEOD(ctx context.Context, ticker models.Ticker, opts ...EODOption) (models.PriceSeries, error)

	// GetFundamentals retrieves the latest fundamentals snapshot
	GetFundamentals(ctx context.Context, ticker models.Ticker) (*models.Fundamentals, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily
	Order  string // a=ascending, d=descending
}

// NewEODParams applies opts over the daily ascending defaults
func NewEODParams(opts ...EODOption) *EODParams {
	p := &EODParams{Period: "d", Order: "a"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// GeminiClient provides access to Gemini API
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// SummarizeAnalysis writes a short narrative for a finished analysis
	SummarizeAnalysis(ctx context.Context, analysis *models.Analysis) (string, error)
}
