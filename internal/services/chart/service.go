// Package chart renders price history charts
package chart

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/models"
	"github.com/bobmcallan/mini-analyst/internal/signals"
)

// Service implements ChartService
type Service struct {
	fetcher  interfaces.FetcherService
	universe interfaces.UniverseService // optional, for titles
	logger   *common.Logger
}

// NewService creates a chart service. universe may be nil.
func NewService(fetcher interfaces.FetcherService, universe interfaces.UniverseService, logger *common.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		universe: universe,
		logger:   logger,
	}
}

// Render fetches the ticker's history and writes a PNG chart to w
func (s *Service) Render(ctx context.Context, rawTicker string, w io.Writer) error {
	ticker, err := models.ParseTicker(rawTicker)
	if err != nil {
		return err
	}

	series, err := s.fetcher.FetchSeries(ctx, ticker)
	if err != nil {
		return err
	}

	title := ticker.String()
	if s.universe != nil {
		if e, ok := s.universe.Lookup(title); ok {
			title = fmt.Sprintf("%s (%s)", e.Name, title)
		}
	}

	return RenderPNG(title, series, w)
}

// RenderPNG draws closes with 50 and 200 day SMA overlays. Each overlay
// starts once its window is full and is omitted when the series is shorter.
func RenderPNG(title string, series models.PriceSeries, w io.Writer) error {
	if len(series) < 2 {
		return fmt.Errorf("%w: need at least 2 bars, got %d", common.ErrInsufficientHistory, len(series))
	}

	dates := make([]time.Time, len(series))
	closes := series.Closes()
	for i, bar := range series {
		dates[i] = bar.Date
	}

	plotted := []chart.Series{
		chart.TimeSeries{
			Name: "Close",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2,
			},
			XValues: dates,
			YValues: closes,
		},
	}

	overlays := []struct {
		name   string
		period int
		color  string
	}{
		{"SMA 50", signals.PeriodSMAShort, "f59e0b"},
		{"SMA 200", signals.PeriodSMALong, "9ca3af"},
	}
	for _, o := range overlays {
		x, y := rollingSMA(dates, closes, o.period)
		if len(x) < 2 {
			continue
		}
		plotted = append(plotted, chart.TimeSeries{
			Name: o.name,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(o.color),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: x,
			YValues: y,
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: plotted,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}

// rollingSMA returns the SMA at every index where the window is full
func rollingSMA(dates []time.Time, closes []float64, period int) ([]time.Time, []float64) {
	if len(closes) < period {
		return nil, nil
	}

	x := make([]time.Time, 0, len(closes)-period+1)
	y := make([]float64, 0, len(closes)-period+1)
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			x = append(x, dates[i])
			y = append(y, sum/float64(period))
		}
	}
	return x, y
}

// Ensure Service implements ChartService
var _ interfaces.ChartService = (*Service)(nil)
