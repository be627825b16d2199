package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

func TestCombine_AllUnavailableIsNeutral(t *testing.T) {
	c := NewDefaultCombiner()

	for name, tc := range map[string]struct {
		tech *models.TechnicalIndicators
		fund *models.FundamentalRatios
	}{
		"nil inputs":   {nil, nil},
		"empty inputs": {&models.TechnicalIndicators{}, &models.FundamentalRatios{}},
	} {
		t.Run(name, func(t *testing.T) {
			res := c.Combine(tc.tech, tc.fund)
			assert.Equal(t, models.SignalNeutral, res.Signal)
			assert.Equal(t, 0.0, res.Score)
			assert.Equal(t, 50, res.Confidence)
			assert.Empty(t, res.Contributions)
			assert.Equal(t, models.SignalNeutral, res.Technical.Signal)
			assert.Equal(t, models.SignalNeutral, res.Fundamental.Signal)
			assert.Contains(t, res.Reasoning, "No indicators available")
		})
	}
}

func TestCombine_Deterministic(t *testing.T) {
	c := NewDefaultCombiner()
	tech := &models.TechnicalIndicators{CurrentPrice: ptr(120), SMA200: ptr(100), SMA50: ptr(110), RSI: ptr(55), Volatility: ptr(25)}
	fund := &models.FundamentalRatios{ROEPct: ptr(12), PE: ptr(60), DebtToEquity: ptr(0.9)}

	first := c.Combine(tech, fund)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Combine(tech, fund))
	}
}

func TestCombine_MonotonicYearIsBuy(t *testing.T) {
	ind := NewComputer().ComputeTechnical(generateSeries(linearCloses(100, 200, 252)))

	res := NewDefaultCombiner().Combine(ind, NormalizeFundamentals(nil))

	// +20 above SMA200, +5 SMA50 above SMA200, -5 overbought RSI, +10 low volatility
	assert.Equal(t, 30.0, res.Score)
	assert.Equal(t, models.SignalBuy, res.Signal)
	assert.Equal(t, 80, res.Confidence)
	assert.Equal(t, 0, res.Fundamental.Available)
	for _, ct := range res.Contributions {
		assert.Equal(t, models.GroupTechnical, ct.Group)
	}
}

func TestCombine_StrongFundamentals(t *testing.T) {
	fund := &models.FundamentalRatios{
		ROEPct:           ptr(20),
		ProfitMarginPct:  ptr(20),
		DebtToEquity:     ptr(0.3),
		PE:               ptr(12),
		RevenueGrowthPct: ptr(15),
	}

	res := NewDefaultCombiner().Combine(nil, fund)

	assert.Equal(t, 82.5, res.Score)
	assert.Equal(t, models.SignalBuy, res.Signal)
	assert.Equal(t, 100, res.Confidence)
	assert.Equal(t, 100.0, res.Fundamental.Score)
	assert.Equal(t, 55.0, res.Fundamental.Points)
	assert.Equal(t, 5, res.Fundamental.Available)

	order := make([]string, 0, len(res.Contributions))
	for _, ct := range res.Contributions {
		order = append(order, ct.Indicator)
	}
	assert.Equal(t, []string{
		models.IndicatorROE,
		models.IndicatorProfitMargin,
		models.IndicatorDebtToEquity,
		models.IndicatorPE,
		models.IndicatorRevenueGrowth,
	}, order)
}

func TestCombine_NegativeDebtToEquityIsNotConservative(t *testing.T) {
	res := NewDefaultCombiner().Combine(nil, &models.FundamentalRatios{DebtToEquity: ptr(-2)})

	require.Len(t, res.Contributions, 1)
	ct := res.Contributions[0]
	assert.Equal(t, models.IndicatorDebtToEquity, ct.Indicator)
	assert.Equal(t, -15.0, ct.Points)
	assert.Contains(t, ct.Note, "Negative shareholder equity")
	assert.NotEqual(t, models.SignalBuy, res.Signal)
}

func TestCombine_LossMakerWithoutEquityIsNotBuy(t *testing.T) {
	// EODHD reports a zero trailing P/E for loss makers and a negative
	// equity balance sheet
	fund := NormalizeFundamentals(&models.Fundamentals{
		TrailingPE: ptr(0),
		ForwardPE:  ptr(-12.5),
	})

	res := NewDefaultCombiner().Combine(nil, fund)

	require.Len(t, res.Contributions, 1)
	assert.Equal(t, models.IndicatorPE, res.Contributions[0].Indicator)
	assert.Equal(t, -20.0, res.Contributions[0].Points)
	assert.Equal(t, -30.0, res.Score)
	assert.Equal(t, models.SignalSell, res.Signal)
}

func TestCombine_Downtrend(t *testing.T) {
	tech := &models.TechnicalIndicators{CurrentPrice: ptr(80), SMA200: ptr(100), SMA50: ptr(120), RSI: ptr(25), Volatility: ptr(50)}

	res := NewDefaultCombiner().Combine(tech, nil)

	// SMA50 rule only applies above the 200-day average
	assert.Len(t, res.Contributions, 3)
	assert.Equal(t, -25.0, res.Score)
	assert.Equal(t, models.SignalSell, res.Signal)
	assert.Equal(t, 25, res.Confidence)
	assert.Equal(t, 25.0, res.Technical.Score)
	assert.Equal(t, models.SignalSell, res.Technical.Signal)
}

func TestCombine_Thresholds(t *testing.T) {
	c := NewDefaultCombiner()

	tests := []struct {
		name  string
		fund  *models.FundamentalRatios
		score float64
		want  models.Signal
	}{
		{"cheap P/E hits buy threshold", &models.FundamentalRatios{PE: ptr(12)}, 15, models.SignalBuy},
		{"fair P/E is neutral", &models.FundamentalRatios{PE: ptr(25)}, 0, models.SignalNeutral},
		{"expensive P/E hits sell threshold", &models.FundamentalRatios{PE: ptr(60)}, -15, models.SignalSell},
		{"loss-making", &models.FundamentalRatios{PE: ptr(-5)}, -30, models.SignalSell},
		{"high leverage", &models.FundamentalRatios{DebtToEquity: ptr(2)}, -22.5, models.SignalSell},
		{"growth only", &models.FundamentalRatios{RevenueGrowthPct: ptr(5)}, 0, models.SignalNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Combine(nil, tt.fund)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.want, res.Signal)
		})
	}
}

func TestCombine_PrefersWeeklyRSI(t *testing.T) {
	tech := &models.TechnicalIndicators{RSI: ptr(80), RSIWeekly: ptr(50)}

	res := NewDefaultCombiner().Combine(tech, nil)

	require.Len(t, res.Contributions, 1)
	assert.Equal(t, models.IndicatorRSIWeekly, res.Contributions[0].Indicator)
	assert.Equal(t, 10.0, res.Contributions[0].Points)

	res = NewDefaultCombiner().Combine(&models.TechnicalIndicators{RSI: ptr(80)}, nil)
	require.Len(t, res.Contributions, 1)
	assert.Equal(t, models.IndicatorRSI, res.Contributions[0].Indicator)
	assert.Equal(t, -5.0, res.Contributions[0].Points)
}

func TestCombine_CustomWeights(t *testing.T) {
	c := NewCombiner(common.SignalConfig{TechnicalWeight: 2, FundamentalWeight: 0, BuyThreshold: 30, SellThreshold: -30})
	tech := &models.TechnicalIndicators{CurrentPrice: ptr(120), SMA200: ptr(100)}
	fund := &models.FundamentalRatios{PE: ptr(-1)}

	res := c.Combine(tech, fund)

	assert.Equal(t, 40.0, res.Score)
	assert.Equal(t, models.SignalBuy, res.Signal)
	require.Len(t, res.Contributions, 2)
	assert.Equal(t, 40.0, res.Contributions[0].Weighted)
	assert.Equal(t, 0.0, res.Contributions[1].Weighted)
	assert.Equal(t, -20.0, res.Contributions[1].Points)
}

func TestGroupSignal(t *testing.T) {
	assert.Equal(t, models.SignalBuy, GroupSignal(60))
	assert.Equal(t, models.SignalNeutral, GroupSignal(59.9))
	assert.Equal(t, models.SignalNeutral, GroupSignal(40.1))
	assert.Equal(t, models.SignalSell, GroupSignal(40))
}
