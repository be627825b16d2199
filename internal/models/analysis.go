package models

import "time"

// CompanyInfo identifies the analysed company
type CompanyInfo struct {
	Name         string   `json:"name"`
	Sector       string   `json:"sector,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	MarketCap    *float64 `json:"market_cap"`
	CurrentPrice *float64 `json:"current_price"`
}

// TechnicalReport is the technical block of an analysis response
type TechnicalReport struct {
	GroupScore
	Indicators *TechnicalIndicators `json:"indicators"`
}

// FundamentalReport is the fundamental block of an analysis response
type FundamentalReport struct {
	GroupScore
	Ratios      *FundamentalRatios `json:"ratios"`
	CompanyInfo CompanyInfo        `json:"company_info"`
}

// Analysis is the full response for one ticker
type Analysis struct {
	Success       bool              `json:"success"`
	Symbol        Ticker            `json:"symbol"`
	Company       string            `json:"company"`
	Signal        Signal            `json:"signal"`
	Score         float64           `json:"score"`
	Confidence    int               `json:"confidence"`
	Reasoning     string            `json:"reasoning"`
	Price         *PriceSummary     `json:"price"`
	Technical     TechnicalReport   `json:"technical"`
	Fundamental   FundamentalReport `json:"fundamental"`
	Contributions []Contribution    `json:"contributions"`
	Debate        *Debate           `json:"debate,omitempty"`
	Commentary    string            `json:"commentary,omitempty"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// AnalyzeOptions tunes a single analysis request
type AnalyzeOptions struct {
	Commentary bool // ask the AI client for a narrative summary
	Debate     bool // include the debate transcript
}

// UniverseEntry is a known symbol offered for autocomplete
type UniverseEntry struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Market string `json:"market" yaml:"-"`
}
