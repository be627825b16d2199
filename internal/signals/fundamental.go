package signals

import (
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// debtToEquityPercentCutoff separates ratio-form D/E (1.2) from the percent
// form some providers publish (120).
const debtToEquityPercentCutoff = 10

// NormalizeFundamentals converts a provider snapshot into ratios on a common
// scale: ROE, margin and growth become percent, D/E becomes a plain ratio and
// P/E uses trailing with forward as fallback. Missing values stay nil, as do
// a zero P/E and a negative D/E.
func NormalizeFundamentals(f *models.Fundamentals) *models.FundamentalRatios {
	r := &models.FundamentalRatios{}
	if f == nil {
		return r
	}

	// A zero P/E means no earnings were reported, not a cheap stock
	r.PE = nonZero(f.TrailingPE)
	if r.PE == nil {
		r.PE = nonZero(f.ForwardPE)
	}

	r.ROEPct = percent(f.ReturnOnEquity)
	r.ProfitMarginPct = percent(f.ProfitMargin)
	r.RevenueGrowthPct = percent(f.RevenueGrowth)
	r.EarningsGrowthPct = percent(f.EarningsGrowth)

	// Negative D/E comes from negative equity and is left unavailable
	if f.DebtToEquity != nil && *f.DebtToEquity >= 0 {
		de := *f.DebtToEquity
		if de > debtToEquityPercentCutoff {
			de /= 100
		}
		r.DebtToEquity = ptr(de)
	}

	r.FreeCashflow = copyPtr(f.FreeCashflow)
	r.MarketCap = copyPtr(f.MarketCap)

	return r
}

func percent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v * 100)
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return ptr(*v)
}

func copyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v)
}
