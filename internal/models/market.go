// Package models defines data structures for mini-analyst
package models

import (
	"time"
)

// EODBar represents a single day's price data.
// Open, High, Low and Volume are zero when the provider did not report them.
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// PriceSeries is a trailing window of daily bars ordered by date ascending.
// Missing trading days are simply absent.
type PriceSeries []EODBar

// Closes returns the closing prices in series order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Latest returns the most recent bar, or false for an empty series
func (s PriceSeries) Latest() (EODBar, bool) {
	if len(s) == 0 {
		return EODBar{}, false
	}
	return s[len(s)-1], true
}

// Fundamentals is the company snapshot returned by a provider. Ratio fields
// are nil when the provider does not publish them.
type Fundamentals struct {
	Ticker         string    `json:"ticker"`
	Name           string    `json:"name,omitempty"`
	Sector         string    `json:"sector,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	MarketCap      *float64  `json:"market_cap"`
	CurrentPrice   *float64  `json:"current_price"`
	TrailingPE     *float64  `json:"trailing_pe"`
	ForwardPE      *float64  `json:"forward_pe"`
	ReturnOnEquity *float64  `json:"return_on_equity"` // fraction, 0.15 = 15%
	DebtToEquity   *float64  `json:"debt_to_equity"`   // ratio or percent, provider dependent
	ProfitMargin   *float64  `json:"profit_margin"`    // fraction
	RevenueGrowth  *float64  `json:"revenue_growth"`   // fraction, year over year
	EarningsGrowth *float64  `json:"earnings_growth"`  // fraction, year over year
	FreeCashflow   *float64  `json:"free_cashflow"`
	LastUpdated    time.Time `json:"last_updated"`
}

// MarketSnapshot is everything fetched upstream for one request
type MarketSnapshot struct {
	Ticker       Ticker        `json:"ticker"`
	Series       PriceSeries   `json:"-"`
	Fundamentals *Fundamentals `json:"fundamentals"`
	FetchedAt    time.Time     `json:"fetched_at"`
}

// PriceSummary condenses a PriceSeries for responses
type PriceSummary struct {
	Points     int       `json:"points"`
	FirstDate  time.Time `json:"first_date"`
	LastDate   time.Time `json:"last_date"`
	LastClose  float64   `json:"last_close"`
	PrevClose  *float64  `json:"previous_close"`
	ChangePct  *float64  `json:"change_pct"`
	High52Week float64   `json:"high_52_week"`
	Low52Week  float64   `json:"low_52_week"`
	AvgVolume  int64     `json:"avg_volume"`
}

// IndexQuote is the latest level of a reference index
type IndexQuote struct {
	Symbol string    `json:"symbol"`
	Value  float64   `json:"value"`
	Change float64   `json:"change"` // percent vs previous close
	AsOf   time.Time `json:"as_of"`
}
