package model

// PatternType classifies the directional meaning of a detected pattern.
type PatternType string

const (
	PatternBullish      PatternType = "bullish"
	PatternBearish      PatternType = "bearish"
	PatternNeutral      PatternType = "neutral"
	PatternConfirmation PatternType = "confirmation"
	PatternWarning      PatternType = "warning"
)

// PatternStrength grades how reliable a detected pattern is considered.
type PatternStrength string

const (
	StrengthWeak   PatternStrength = "weak"
	StrengthMedium PatternStrength = "medium"
	StrengthStrong PatternStrength = "strong"
)

// Pattern is one detected candlestick or chart pattern, produced fresh on
// every analysis pass and never mutated afterwards.
type Pattern struct {
	Name        string          `json:"name"`
	Type        PatternType     `json:"type"`
	Strength    PatternStrength `json:"strength"`
	Description string          `json:"description"`
}
