package models

// Signal is the directional recommendation
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL" // shown as HOLD by some clients
)

// Indicator groups
const (
	GroupTechnical   = "technical"
	GroupFundamental = "fundamental"
)

// Contribution is one indicator's share of the weighted score
type Contribution struct {
	Indicator string  `json:"indicator"`
	Group     string  `json:"group"`
	Value     float64 `json:"value"`
	Points    float64 `json:"points"`   // raw rule points
	Weighted  float64 `json:"weighted"` // points x group weight
	Note      string  `json:"note"`
}

// GroupScore summarises one indicator group on the 0-100 agent scale
type GroupScore struct {
	Score     float64 `json:"score"`
	Signal    Signal  `json:"signal"`
	Points    float64 `json:"points"`
	Available int     `json:"available"`
	Reasoning string  `json:"reasoning"`
}

// SignalResult is the combiner output
type SignalResult struct {
	Signal        Signal         `json:"signal"`
	Score         float64        `json:"score"`      // weighted sum, 0 = neutral
	Confidence    int            `json:"confidence"` // 0-100
	Technical     GroupScore     `json:"technical"`
	Fundamental   GroupScore     `json:"fundamental"`
	Contributions []Contribution `json:"contributions"`
	Reasoning     string         `json:"reasoning"`
}

// DebateLine is one statement in the analyst debate transcript
type DebateLine struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}

// Debate is the presentational dialogue between the two analysts
type Debate struct {
	Agree      bool         `json:"agree"`
	Transcript []DebateLine `json:"transcript"`
	FinalScore float64      `json:"final_score"`
	Decision   Signal       `json:"decision"`
}
