package signals

import (
	"fmt"

	"github.com/bobmcallan/mini-analyst/internal/models"
)

// Debate speakers
const (
	SpeakerFundamental  = "Fundamental Analyst"
	SpeakerTechnical    = "Technical Analyst"
	SpeakerModerator    = "Moderator"
	SpeakerJoint        = "Joint Statement"
	SpeakerOrchestrator = "Orchestrator"
)

// Debate renders a deterministic dialogue between the two analyst groups.
// It is presentational only: the decision is always the combined signal.
func (c *Combiner) Debate(result models.SignalResult) *models.Debate {
	fund, tech := result.Fundamental, result.Technical
	agree := fund.Signal == tech.Signal

	d := &models.Debate{
		Agree:    agree,
		Decision: result.Signal,
	}
	say := func(speaker, format string, args ...any) {
		d.Transcript = append(d.Transcript, models.DebateLine{Speaker: speaker, Message: fmt.Sprintf(format, args...)})
	}

	switch fund.Signal {
	case models.SignalBuy:
		say(SpeakerFundamental, "The business is in good shape. %s", fund.Reasoning)
	case models.SignalSell:
		say(SpeakerFundamental, "I cannot recommend this company. %s", fund.Reasoning)
	default:
		say(SpeakerFundamental, "The fundamentals are mixed. %s", fund.Reasoning)
	}

	switch tech.Signal {
	case models.SignalBuy:
		say(SpeakerTechnical, "The chart agrees. %s", tech.Reasoning)
	case models.SignalSell:
		say(SpeakerTechnical, "Price action looks dangerous. %s", tech.Reasoning)
	default:
		say(SpeakerTechnical, "Price is moving sideways. %s", tech.Reasoning)
	}

	if !agree {
		if tech.Score > fund.Score {
			say(SpeakerFundamental, "Momentum is not value. Show me the earnings behind this move.")
		} else {
			say(SpeakerFundamental, "Chart patterns fail. The cash flow has to back the price.")
		}

		if fund.Score > tech.Score {
			say(SpeakerTechnical, "Valuation takes years to matter. The trend is what pays today.")
		} else {
			say(SpeakerTechnical, "Fundamentals lag. By the time they improve the move is over.")
		}

		say(SpeakerFundamental, "My score of %.0f reflects the business as it is.", fund.Score)
		say(SpeakerTechnical, "My score of %.0f reflects supply and demand.", tech.Score)
		say(SpeakerModerator, "What is the biggest risk here?")
		say(SpeakerJoint, "The main risk is %s.", debateRisk(fund.Score, tech.Score))
	}

	tw, fw := c.Weights()
	if tw+fw > 0 {
		d.FinalScore = (fund.Score*fw + tech.Score*tw) / (tw + fw)
	} else {
		d.FinalScore = groupBase
	}

	if agree {
		say(SpeakerOrchestrator, "Both analysts agree. %s confirmed with a weighted score of %.1f.", result.Signal, d.FinalScore)
	} else {
		say(SpeakerOrchestrator, "After debate the combined view is %s with a weighted score of %.1f.", result.Signal, d.FinalScore)
	}

	return d
}

func debateRisk(fundScore, techScore float64) string {
	switch {
	case fundScore < groupSellLevel:
		return "an earnings miss or balance sheet stress"
	case techScore < groupSellLevel:
		return "a breakdown of the price trend"
	case fundScore > 80 && techScore > 80:
		return "a pullback from stretched valuations"
	default:
		return "general market volatility"
	}
}
