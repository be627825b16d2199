// Package signals computes technical indicators, normalizes fundamentals and
// combines both into a single BUY / SELL / NEUTRAL signal
package signals

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// Indicator windows and annualization constant
const (
	PeriodSMAShort  = 50
	PeriodSMALong   = 200
	PeriodRSI       = 14
	TradingDaysYear = 252
)

// Unavailable reasons
const (
	ReasonInsufficientHistory = "insufficient_history"
	ReasonInvalidBase         = "invalid_base"
)

// errInvalidBase marks a return whose starting close is zero
var errInvalidBase = errors.New("zero base price")

func insufficient(have, need int) error {
	return fmt.Errorf("%w: have %d, need %d", common.ErrInsufficientHistory, have, need)
}

// reason maps an indicator error to its unavailable reason
func reason(err error) string {
	if errors.Is(err, errInvalidBase) {
		return ReasonInvalidBase
	}
	return ReasonInsufficientHistory
}

// SMA averages the last period closes. Closes are ordered oldest first.
// A series shorter than period is an error, never a short-window average.
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 || len(closes) < period {
		return 0, insufficient(len(closes), period)
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), nil
}

// RSI calculates the Relative Strength Index over the last period changes
// using simple averages. No losses gives 100.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 || len(closes) < period+1 {
		return 0, insufficient(len(closes), period+1)
	}

	var gains, losses float64
	window := closes[len(closes)-period-1:]
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return clamp(100-(100/(1+rs)), 0, 100), nil
}

// Volatility returns the annualized sample standard deviation of daily
// simple returns, in percent. Needs at least two returns.
func Volatility(closes []float64) (float64, error) {
	if len(closes) < 3 {
		return 0, insufficient(len(closes), 3)
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0, insufficient(len(returns)+1, 3)
	}

	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysYear) * 100, nil
}

// Return1Y is the percent change from the close TradingDaysYear sessions
// back (index len-252) to the latest close. Shorter series use the earliest
// close.
func Return1Y(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, insufficient(len(closes), 2)
	}

	start := 0
	if len(closes) > TradingDaysYear {
		start = len(closes) - TradingDaysYear
	}
	base := closes[start]
	if base == 0 {
		return 0, errInvalidBase
	}
	return (closes[len(closes)-1] - base) / base * 100, nil
}

// WeeklyCloses returns the last close of each ISO week, oldest first
func WeeklyCloses(series models.PriceSeries) []float64 {
	var (
		weekly   []float64
		lastYear int
		lastWeek int
	)
	for _, bar := range series {
		y, w := bar.Date.ISOWeek()
		if len(weekly) > 0 && y == lastYear && w == lastWeek {
			weekly[len(weekly)-1] = bar.Close
			continue
		}
		weekly = append(weekly, bar.Close)
		lastYear, lastWeek = y, w
	}
	return weekly
}

// High52Week returns the highest high in the last 252 sessions
func High52Week(series models.PriceSeries) float64 {
	high := 0.0
	for _, bar := range lastN(series, TradingDaysYear) {
		if bar.High > high {
			high = bar.High
		}
	}
	return high
}

// Low52Week returns the lowest reported low in the last 252 sessions
func Low52Week(series models.PriceSeries) float64 {
	low := math.MaxFloat64
	for _, bar := range lastN(series, TradingDaysYear) {
		if bar.Low > 0 && bar.Low < low {
			low = bar.Low
		}
	}
	if low == math.MaxFloat64 {
		return 0
	}
	return low
}

// AverageVolume calculates average volume over the last period sessions,
// skipping sessions whose volume was not reported
func AverageVolume(series models.PriceSeries, period int) int64 {
	var sum, n int64
	for _, bar := range lastN(series, period) {
		if bar.Volume > 0 {
			sum += bar.Volume
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// Summarize builds the price block shown with an analysis
func Summarize(series models.PriceSeries) *models.PriceSummary {
	summary := &models.PriceSummary{Points: len(series)}
	last, ok := series.Latest()
	if !ok {
		return summary
	}

	summary.FirstDate = series[0].Date
	summary.LastDate = last.Date
	summary.LastClose = last.Close
	if len(series) > 1 {
		prev := series[len(series)-2].Close
		summary.PrevClose = ptr(prev)
		if prev != 0 {
			summary.ChangePct = ptr((last.Close - prev) / prev * 100)
		}
	}
	summary.High52Week = High52Week(series)
	summary.Low52Week = Low52Week(series)
	summary.AvgVolume = AverageVolume(series, 20)
	return summary
}

func lastN(series models.PriceSeries, n int) models.PriceSeries {
	if len(series) > n {
		return series[len(series)-n:]
	}
	return series
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func ptr(v float64) *float64 {
	return &v
}
