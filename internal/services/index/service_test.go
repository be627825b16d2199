package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

type mockClient struct {
	mu     sync.Mutex
	series map[models.Ticker]models.PriceSeries
	errs   map[models.Ticker]error
	seen   []models.Ticker
}

func (m *mockClient) GetEOD(_ context.Context, t models.Ticker, _ ...interfaces.EODOption) (models.PriceSeries, error) {
	m.mu.Lock()
	m.seen = append(m.seen, t)
	m.mu.Unlock()
	if err := m.errs[t]; err != nil {
		return nil, err
	}
	return m.series[t], nil
}

func (m *mockClient) GetFundamentals(_ context.Context, _ models.Ticker) (*models.Fundamentals, error) {
	return nil, errors.New("not used")
}

func closes(cs ...float64) models.PriceSeries {
	s := make(models.PriceSeries, len(cs))
	for i, c := range cs {
		s[i] = models.EODBar{Date: time.Date(2025, 3, 3+i, 0, 0, 0, 0, time.UTC), Close: c}
	}
	return s
}

func defaultCfg() common.IndicesConfig {
	return common.NewDefaultConfig().Indices
}

func TestIndices_Both(t *testing.T) {
	c := &mockClient{series: map[models.Ticker]models.PriceSeries{
		"^NSEI": closes(22000, 22100, 22321),
		"^GSPC": closes(5000, 4950),
	}}

	got := NewService(c, defaultCfg(), "test", nil, common.NewSilentLogger()).Indices(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, 22321.0, got["nifty"].Value)
	assert.Equal(t, 1.0, got["nifty"].Change)
	assert.Equal(t, "^NSEI", got["nifty"].Symbol)
	assert.Equal(t, 4950.0, got["sp500"].Value)
	assert.Equal(t, -1.0, got["sp500"].Change)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got["sp500"].AsOf)
}

func TestIndices_FailedIndexOmitted(t *testing.T) {
	c := &mockClient{
		series: map[models.Ticker]models.PriceSeries{"^GSPC": closes(100, 101)},
		errs:   map[models.Ticker]error{"^NSEI": errors.New("upstream down")},
	}

	got := NewService(c, defaultCfg(), "test", nil, common.NewSilentLogger()).Indices(context.Background())

	assert.Len(t, got, 1)
	assert.NotContains(t, got, "nifty")
	assert.Contains(t, got, "sp500")
}

func TestIndices_ShortSeriesOmitted(t *testing.T) {
	c := &mockClient{series: map[models.Ticker]models.PriceSeries{
		"^NSEI": closes(22000),
		"^GSPC": nil,
	}}

	got := NewService(c, defaultCfg(), "test", nil, common.NewSilentLogger()).Indices(context.Background())

	assert.Empty(t, got)
}

func TestNewService_SkipsInvalidSymbols(t *testing.T) {
	c := &mockClient{}
	s := NewService(c, common.IndicesConfig{Nifty: "bad symbol", SP500: ""}, "test", nil, common.NewSilentLogger())

	assert.Empty(t, s.Indices(context.Background()))
	assert.Empty(t, c.seen)
}

func TestQuoteFromSeries(t *testing.T) {
	_, err := QuoteFromSeries("^X", closes(1))
	assert.ErrorIs(t, err, common.ErrInsufficientHistory)

	_, err = QuoteFromSeries("^X", closes(0, 1))
	assert.Error(t, err)

	q, err := QuoteFromSeries("^X", closes(3, 200, 201.234))
	require.NoError(t, err)
	assert.Equal(t, 201.23, q.Value)
	assert.Equal(t, 0.62, q.Change)
}
