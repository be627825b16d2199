package signals

import (
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

// Group sub-scores sit on a 0-100 scale centred on 50
const (
	groupBase       = 50
	groupBuyLevel   = 60
	groupSellLevel  = 40
	confidenceFloor = 0
	confidenceCeil  = 100
)

// Combiner turns indicator sets into a weighted signal. It is pure: the same
// inputs always produce the same result.
type Combiner struct {
	technicalWeight   float64
	fundamentalWeight float64
	buyThreshold      float64
	sellThreshold     float64
}

// NewCombiner creates a combiner from the signal config section
func NewCombiner(cfg common.SignalConfig) *Combiner {
	return &Combiner{
		technicalWeight:   cfg.TechnicalWeight,
		fundamentalWeight: cfg.FundamentalWeight,
		buyThreshold:      cfg.BuyThreshold,
		sellThreshold:     cfg.SellThreshold,
	}
}

// NewDefaultCombiner uses the default weights and thresholds
func NewDefaultCombiner() *Combiner {
	return NewCombiner(common.NewDefaultConfig().Signal)
}

// Weights returns the technical and fundamental group weights
func (c *Combiner) Weights() (technical, fundamental float64) {
	return c.technicalWeight, c.fundamentalWeight
}

// Combine scores every available indicator, weights the groups and maps the
// total to a signal. Unavailable indicators contribute nothing and their
// weight is not redistributed.
func (c *Combiner) Combine(tech *models.TechnicalIndicators, fund *models.FundamentalRatios) models.SignalResult {
	techContribs := technicalRules(tech)
	fundContribs := fundamentalRules(fund)

	for i := range techContribs {
		techContribs[i].Weighted = techContribs[i].Points * c.technicalWeight
	}
	for i := range fundContribs {
		fundContribs[i].Weighted = fundContribs[i].Points * c.fundamentalWeight
	}

	contributions := make([]models.Contribution, 0, len(techContribs)+len(fundContribs))
	contributions = append(contributions, techContribs...)
	contributions = append(contributions, fundContribs...)

	score := 0.0
	for _, ct := range contributions {
		score += ct.Weighted
	}

	result := models.SignalResult{
		Signal:        c.classify(score),
		Score:         score,
		Confidence:    int(math.Round(clamp(groupBase+score, confidenceFloor, confidenceCeil))),
		Technical:     groupScore(techContribs, "technical"),
		Fundamental:   groupScore(fundContribs, "fundamental"),
		Contributions: contributions,
	}

	if len(contributions) == 0 {
		result.Reasoning = "No indicators available; signal defaults to NEUTRAL."
	} else {
		result.Reasoning = joinNotes(contributions)
	}

	return result
}

func (c *Combiner) classify(score float64) models.Signal {
	switch {
	case score >= c.buyThreshold:
		return models.SignalBuy
	case score <= c.sellThreshold:
		return models.SignalSell
	default:
		return models.SignalNeutral
	}
}

// GroupSignal maps a 0-100 group score to a signal
func GroupSignal(score float64) models.Signal {
	switch {
	case score >= groupBuyLevel:
		return models.SignalBuy
	case score <= groupSellLevel:
		return models.SignalSell
	default:
		return models.SignalNeutral
	}
}

func groupScore(contribs []models.Contribution, label string) models.GroupScore {
	points := 0.0
	for _, ct := range contribs {
		points += ct.Points
	}
	score := clamp(groupBase+points, 0, 100)

	gs := models.GroupScore{
		Score:     score,
		Signal:    GroupSignal(score),
		Points:    points,
		Available: len(contribs),
	}
	if len(contribs) == 0 {
		gs.Reasoning = fmt.Sprintf("Insufficient data for %s analysis.", label)
	} else {
		gs.Reasoning = joinNotes(contribs)
	}
	return gs
}

func joinNotes(contribs []models.Contribution) string {
	notes := make([]string, 0, len(contribs))
	for _, ct := range contribs {
		notes = append(notes, ct.Note)
	}
	return strings.Join(notes, ". ") + "."
}

func technical(indicator string, value, points float64, note string) models.Contribution {
	return models.Contribution{Indicator: indicator, Group: models.GroupTechnical, Value: value, Points: points, Note: note}
}

func fundamental(indicator string, value, points float64, note string) models.Contribution {
	return models.Contribution{Indicator: indicator, Group: models.GroupFundamental, Value: value, Points: points, Note: note}
}

// technicalRules applies the trend, momentum and stability rules in fixed order
func technicalRules(t *models.TechnicalIndicators) []models.Contribution {
	var out []models.Contribution
	if t == nil {
		return out
	}

	if t.CurrentPrice != nil && t.SMA200 != nil {
		price, sma := *t.CurrentPrice, *t.SMA200
		if price > sma {
			out = append(out, technical(models.IndicatorSMA200, sma, 20,
				fmt.Sprintf("Price %.2f is above the 200-day SMA %.2f (long-term uptrend)", price, sma)))

			if t.SMA50 != nil {
				if *t.SMA50 > sma {
					out = append(out, technical(models.IndicatorSMA50, *t.SMA50, 5,
						fmt.Sprintf("50-day SMA %.2f is above the 200-day SMA (trend confirmed)", *t.SMA50)))
				} else {
					out = append(out, technical(models.IndicatorSMA50, *t.SMA50, 0,
						fmt.Sprintf("50-day SMA %.2f has not crossed the 200-day SMA", *t.SMA50)))
				}
			}
		} else {
			out = append(out, technical(models.IndicatorSMA200, sma, -20,
				fmt.Sprintf("Price %.2f is below the 200-day SMA %.2f (long-term downtrend)", price, sma)))
		}
	}

	rsi, name, label := t.RSIWeekly, models.IndicatorRSIWeekly, "Weekly RSI"
	if rsi == nil {
		rsi, name, label = t.RSI, models.IndicatorRSI, "RSI"
	}
	if rsi != nil {
		v := *rsi
		switch {
		case v >= 40 && v <= 70:
			out = append(out, technical(name, v, 10, fmt.Sprintf("%s %.1f is in a healthy range", label, v)))
		case v > 70:
			out = append(out, technical(name, v, -5, fmt.Sprintf("%s %.1f signals overbought conditions", label, v)))
		case v < 30:
			out = append(out, technical(name, v, 5, fmt.Sprintf("%s %.1f signals oversold territory", label, v)))
		default:
			out = append(out, technical(name, v, 0, fmt.Sprintf("%s %.1f is soft but not oversold", label, v)))
		}
	}

	if t.Volatility != nil {
		v := *t.Volatility
		switch {
		case v < 20:
			out = append(out, technical(models.IndicatorVolatility, v, 10, fmt.Sprintf("Low volatility %.1f%% suggests stability", v)))
		case v > 40:
			out = append(out, technical(models.IndicatorVolatility, v, -10, fmt.Sprintf("High volatility %.1f%% adds risk", v)))
		default:
			out = append(out, technical(models.IndicatorVolatility, v, 0, fmt.Sprintf("Moderate volatility %.1f%%", v)))
		}
	}

	return out
}

// fundamentalRules applies the quality, health, valuation and growth rules
// in fixed order
func fundamentalRules(r *models.FundamentalRatios) []models.Contribution {
	var out []models.Contribution
	if r == nil {
		return out
	}

	if r.ROEPct != nil {
		v := *r.ROEPct
		switch {
		case v > 15:
			out = append(out, fundamental(models.IndicatorROE, v, 15, fmt.Sprintf("High return on equity %.1f%%", v)))
		case v < 8:
			out = append(out, fundamental(models.IndicatorROE, v, -10, fmt.Sprintf("Weak return on equity %.1f%%", v)))
		default:
			out = append(out, fundamental(models.IndicatorROE, v, 0, fmt.Sprintf("Adequate return on equity %.1f%%", v)))
		}
	}

	if r.ProfitMarginPct != nil {
		v := *r.ProfitMarginPct
		switch {
		case v > 15:
			out = append(out, fundamental(models.IndicatorProfitMargin, v, 10, fmt.Sprintf("Strong net margin %.1f%%", v)))
		case v < 5:
			out = append(out, fundamental(models.IndicatorProfitMargin, v, -10, fmt.Sprintf("Thin net margin %.1f%%", v)))
		default:
			out = append(out, fundamental(models.IndicatorProfitMargin, v, 0, fmt.Sprintf("Average net margin %.1f%%", v)))
		}
	}

	if r.DebtToEquity != nil {
		v := *r.DebtToEquity
		switch {
		case v < 0:
			out = append(out, fundamental(models.IndicatorDebtToEquity, v, -15, fmt.Sprintf("Negative shareholder equity (D/E %.2f)", v)))
		case v < 0.5:
			out = append(out, fundamental(models.IndicatorDebtToEquity, v, 10, fmt.Sprintf("Conservative balance sheet (D/E %.2f)", v)))
		case v > 1.5:
			out = append(out, fundamental(models.IndicatorDebtToEquity, v, -15, fmt.Sprintf("High leverage (D/E %.2f)", v)))
		default:
			out = append(out, fundamental(models.IndicatorDebtToEquity, v, 0, fmt.Sprintf("Moderate leverage (D/E %.2f)", v)))
		}
	}

	if r.PE != nil {
		v := *r.PE
		switch {
		case v < 0:
			out = append(out, fundamental(models.IndicatorPE, v, -20, "Company is loss-making (negative P/E)"))
		case v < 15:
			out = append(out, fundamental(models.IndicatorPE, v, 10, fmt.Sprintf("Attractive valuation (P/E %.1f)", v)))
		case v > 50:
			out = append(out, fundamental(models.IndicatorPE, v, -10, fmt.Sprintf("Expensive valuation (P/E %.1f)", v)))
		default:
			out = append(out, fundamental(models.IndicatorPE, v, 0, fmt.Sprintf("Fair valuation (P/E %.1f)", v)))
		}
	}

	if r.RevenueGrowthPct != nil {
		v := *r.RevenueGrowthPct
		switch {
		case v > 10:
			out = append(out, fundamental(models.IndicatorRevenueGrowth, v, 10, fmt.Sprintf("Strong revenue growth %.1f%%", v)))
		case v < 0:
			out = append(out, fundamental(models.IndicatorRevenueGrowth, v, -10, fmt.Sprintf("Shrinking revenue %.1f%%", v)))
		default:
			out = append(out, fundamental(models.IndicatorRevenueGrowth, v, 0, fmt.Sprintf("Modest revenue growth %.1f%%", v)))
		}
	}

	return out
}
