package models

// Indicator names used in unavailable maps and contributions
const (
	IndicatorCurrentPrice = "current_price"
	IndicatorSMA50        = "sma_50"
	IndicatorSMA200       = "sma_200"
	IndicatorRSI          = "rsi"
	IndicatorRSIWeekly    = "rsi_weekly"
	IndicatorVolatility   = "volatility"
	IndicatorReturn1Y     = "return_1y"

	IndicatorPE             = "pe_ratio"
	IndicatorROE            = "roe_pct"
	IndicatorDebtToEquity   = "debt_to_equity"
	IndicatorProfitMargin   = "profit_margin_pct"
	IndicatorRevenueGrowth  = "revenue_growth_pct"
	IndicatorEarningsGrowth = "earnings_growth_pct"
)

// TechnicalIndicators is the indicator set derived from a PriceSeries.
// A nil field is unavailable; Unavailable records why.
type TechnicalIndicators struct {
	CurrentPrice *float64          `json:"current_price"`
	SMA50        *float64          `json:"sma_50"`
	SMA200       *float64          `json:"sma_200"`
	RSI          *float64          `json:"rsi"`
	RSIWeekly    *float64          `json:"rsi_weekly"`
	Volatility   *float64          `json:"volatility"` // annualized, percent
	Return1Y     *float64          `json:"return_1y"`  // percent
	Unavailable  map[string]string `json:"unavailable,omitempty"`
}

// FundamentalRatios is the normalized view of a Fundamentals snapshot.
// Percent fields are expressed in percent (15 = 15%).
type FundamentalRatios struct {
	PE                *float64 `json:"pe_ratio"`
	ROEPct            *float64 `json:"roe_pct"`
	DebtToEquity      *float64 `json:"debt_to_equity"`
	ProfitMarginPct   *float64 `json:"profit_margin_pct"`
	RevenueGrowthPct  *float64 `json:"revenue_growth_pct"`
	EarningsGrowthPct *float64 `json:"earnings_growth_pct"`
	FreeCashflow      *float64 `json:"free_cashflow"`
	MarketCap         *float64 `json:"market_cap"`
}

// Available counts the ratios that feed the signal
func (r *FundamentalRatios) Available() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, v := range []*float64{r.PE, r.ROEPct, r.DebtToEquity, r.ProfitMarginPct, r.RevenueGrowthPct} {
		if v != nil {
			n++
		}
	}
	return n
}
