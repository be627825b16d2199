package chart

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

type mockFetcher struct {
	series models.PriceSeries
	err    error
}

func (m *mockFetcher) Fetch(_ context.Context, t models.Ticker) (*models.MarketSnapshot, error) {
	return &models.MarketSnapshot{Ticker: t, Series: m.series}, m.err
}

func (m *mockFetcher) FetchSeries(_ context.Context, _ models.Ticker) (models.PriceSeries, error) {
	return m.series, m.err
}

func series(n int) models.PriceSeries {
	s := make(models.PriceSeries, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range s {
		s[i] = models.EODBar{Date: start.AddDate(0, 0, i), Close: 100 + float64(i%17)}
	}
	return s
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG("TEST", series(260), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderPNG_ShortSeriesSkipsOverlays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG("TEST", series(10), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderPNG_NeedsTwoBars(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPNG("TEST", series(1), &buf)
	assert.ErrorIs(t, err, common.ErrInsufficientHistory)
	assert.Zero(t, buf.Len())
}

func TestRollingSMA(t *testing.T) {
	dates := []time.Time{{}, {}, {}, {}}
	x, y := rollingSMA(dates, []float64{1, 2, 3, 4}, 2)
	assert.Len(t, x, 3)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, y)

	x, y = rollingSMA(dates, []float64{1, 2}, 5)
	assert.Nil(t, x)
	assert.Nil(t, y)
}

func TestService_Render(t *testing.T) {
	s := NewService(&mockFetcher{series: series(30)}, nil, common.NewSilentLogger())

	var buf bytes.Buffer
	require.NoError(t, s.Render(context.Background(), "aapl", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	err := s.Render(context.Background(), "bad symbol", &buf)
	assert.ErrorIs(t, err, common.ErrInvalidTicker)
}
