package signals

import (
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// Computer derives indicator sets from price series. It holds no state and
// is safe for concurrent use.
type Computer struct{}

// NewComputer creates a new indicator computer
func NewComputer() *Computer {
	return &Computer{}
}

// ComputeTechnical builds the technical indicator set for a series. Each
// indicator degrades independently: one that cannot be computed is left nil
// and its reason recorded in Unavailable.
func (c *Computer) ComputeTechnical(series models.PriceSeries) *models.TechnicalIndicators {
	ind := &models.TechnicalIndicators{
		Unavailable: make(map[string]string),
	}

	closes := series.Closes()

	set := func(name string, target **float64, v float64, err error) {
		if err != nil {
			ind.Unavailable[name] = reason(err)
			return
		}
		*target = ptr(v)
	}

	if last, ok := series.Latest(); ok {
		ind.CurrentPrice = ptr(last.Close)
	} else {
		ind.Unavailable[models.IndicatorCurrentPrice] = ReasonInsufficientHistory
	}

	v, err := SMA(closes, PeriodSMAShort)
	set(models.IndicatorSMA50, &ind.SMA50, v, err)

	v, err = SMA(closes, PeriodSMALong)
	set(models.IndicatorSMA200, &ind.SMA200, v, err)

	v, err = RSI(closes, PeriodRSI)
	set(models.IndicatorRSI, &ind.RSI, v, err)

	v, err = RSI(WeeklyCloses(series), PeriodRSI)
	set(models.IndicatorRSIWeekly, &ind.RSIWeekly, v, err)

	v, err = Volatility(closes)
	set(models.IndicatorVolatility, &ind.Volatility, v, err)

	v, err = Return1Y(closes)
	set(models.IndicatorReturn1Y, &ind.Return1Y, v, err)

	if len(ind.Unavailable) == 0 {
		ind.Unavailable = nil
	}

	return ind
}
