package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/mini-analyst/internal/models"
)

func TestDebate_Agreement(t *testing.T) {
	c := NewDefaultCombiner()
	tech := &models.TechnicalIndicators{CurrentPrice: ptr(120), SMA200: ptr(100), Volatility: ptr(10)}
	fund := &models.FundamentalRatios{ROEPct: ptr(20)}
	res := c.Combine(tech, fund)
	require.Equal(t, models.SignalBuy, res.Technical.Signal)
	require.Equal(t, models.SignalBuy, res.Fundamental.Signal)

	d := c.Debate(res)

	assert.True(t, d.Agree)
	require.Len(t, d.Transcript, 3)
	assert.Equal(t, SpeakerFundamental, d.Transcript[0].Speaker)
	assert.Equal(t, SpeakerTechnical, d.Transcript[1].Speaker)
	assert.Equal(t, SpeakerOrchestrator, d.Transcript[2].Speaker)
	assert.Contains(t, d.Transcript[2].Message, "BUY")
	assert.Equal(t, res.Signal, d.Decision)
	// 0.6 x 65 + 0.4 x 80
	assert.InDelta(t, 71.0, d.FinalScore, 1e-9)
}

func TestDebate_DisagreementAddsCrossExamination(t *testing.T) {
	c := NewDefaultCombiner()
	tech := &models.TechnicalIndicators{CurrentPrice: ptr(80), SMA200: ptr(100)}
	fund := &models.FundamentalRatios{ROEPct: ptr(20), PE: ptr(10)}
	res := c.Combine(tech, fund)

	d := c.Debate(res)

	assert.False(t, d.Agree)
	require.Len(t, d.Transcript, 9)
	assert.Equal(t, SpeakerModerator, d.Transcript[6].Speaker)
	assert.Equal(t, SpeakerJoint, d.Transcript[7].Speaker)
	assert.Contains(t, d.Transcript[7].Message, "breakdown of the price trend")
	assert.Equal(t, SpeakerOrchestrator, d.Transcript[8].Speaker)
	assert.Equal(t, res.Signal, d.Decision)
}

func TestDebate_NeverChangesSignal(t *testing.T) {
	c := NewDefaultCombiner()
	res := c.Combine(nil, nil)
	before := res

	d := c.Debate(res)

	assert.Equal(t, before, res)
	assert.Equal(t, models.SignalNeutral, d.Decision)
	assert.InDelta(t, 50.0, d.FinalScore, 1e-9)
}
