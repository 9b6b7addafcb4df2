package model

// Action is the direction of a trading decision.
type Action string

const (
	ActionWait  Action = "WAIT"
	ActionLong  Action = "LONG"
	ActionShort Action = "SHORT"
)

// Confidence grades how strongly the evidence supports the decision.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Decision is the synthesized trading call for one (instrument, timeframe).
// Each analysis pass produces a new immutable Decision; Reasoning is ordered
// deterministically so identical inputs yield identical output.
type Decision struct {
	Action           Action     `json:"action"`
	Confidence       Confidence `json:"confidence"`
	Entry            float64    `json:"entry"`
	StopLoss         float64    `json:"stopLoss"`
	Target1          float64    `json:"target1"`
	Target2          float64    `json:"target2"`
	Target3          float64    `json:"target3"`
	RiskReward       string     `json:"riskReward"`
	Reasoning        []string   `json:"reasoning"`
	IndicatorSignals []string   `json:"indicatorSignals"`
}
