// Package decision synthesizes a trading decision from detected patterns,
// the latest candle and the indicator snapshot. Evaluate is pure: identical
// inputs always produce an identical Decision, including the order of the
// reasoning lines.
package decision

import (
	"fmt"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/indicator"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// Evaluate produces a fresh Decision for one series. The indicator snapshot
// is recomputed from the series when at least 30 candles are available;
// below that the decision falls back to pattern-only reasoning.
func Evaluate(patterns []model.Pattern, latest model.Candle, candles []model.Candle) model.Decision {
	snap := indicator.CalculateAll(candles)

	bullish := strongestOfType(patterns, model.PatternBullish)
	bearish := strongestOfType(patterns, model.PatternBearish)
	volConfirm := hasPattern(patterns, "High Volume")
	volWarning := hasPattern(patterns, "Low Volume")

	sentiment := ""
	if snap != nil && snap.Summary != nil {
		sentiment = snap.Summary.Sentiment
	}

	long := triggers(bullish, volConfirm, sentiment == "BULLISH")
	short := triggers(bearish, volConfirm, sentiment == "BEARISH")
	if long && short {
		// Conflicting evidence on both sides: stand down.
		long, short = false, false
	}

	if !long && !short {
		return waitDecision(patterns, snap)
	}

	var leading *model.Pattern
	action := model.ActionShort
	if long {
		action = model.ActionLong
		leading = bullish
	} else {
		leading = bearish
	}

	rng := latest.Range()
	var entry, stop float64
	if long {
		entry = latest.High + rng*0.01
		if snap != nil && snap.ATR != nil {
			stop = latest.Low - snap.ATR.ATR*1.5
		} else {
			stop = latest.Low - rng*0.15
		}
	} else {
		entry = latest.Low - rng*0.01
		if snap != nil && snap.ATR != nil {
			stop = latest.High + snap.ATR.ATR*1.5
		} else {
			stop = latest.High + rng*0.15
		}
	}

	risk := entry - stop
	if risk < 0 {
		risk = -risk
	}
	dir := 1.0
	if !long {
		dir = -1.0
	}

	agree := (long && sentiment == "BULLISH") || (short && sentiment == "BEARISH")
	conflict := (long && sentiment == "BEARISH") || (short && sentiment == "BULLISH")

	conf := confidenceFor(volConfirm, agree, conflict)

	d := model.Decision{
		Action:           action,
		Confidence:       conf,
		Entry:            entry,
		StopLoss:         stop,
		Target1:          entry + dir*risk*1.5,
		Target2:          entry + dir*risk*2.5,
		Target3:          entry + dir*risk*4,
		RiskReward:       "1:2.5",
		Reasoning:        buildReasoning(leading, volConfirm, volWarning, snap, action, entry, stop),
		IndicatorSignals: indicatorSignals(snap),
	}
	return d
}

// triggers reports whether one side fires: a strong pattern alone, or a
// medium pattern combined with volume confirmation or indicator agreement.
func triggers(p *model.Pattern, volConfirm, indicatorAgree bool) bool {
	if p == nil {
		return false
	}
	if p.Strength == model.StrengthStrong {
		return true
	}
	if p.Strength == model.StrengthMedium && (volConfirm || indicatorAgree) {
		return true
	}
	return false
}

// confidenceFor walks the low→medium→high ladder: volume confirmation and
// indicator agreement each step it up, an indicator conflict steps it down.
func confidenceFor(volConfirm, agree, conflict bool) model.Confidence {
	level := 0
	if volConfirm {
		level++
	}
	if agree {
		level++
	}
	if conflict {
		level--
	}
	switch {
	case level >= 2:
		return model.ConfidenceHigh
	case level == 1:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func waitDecision(patterns []model.Pattern, snap *indicator.Snapshot) model.Decision {
	reasoning := make([]string, 0, 3)
	if len(patterns) == 0 {
		reasoning = append(reasoning, "No significant patterns detected")
	} else {
		reasoning = append(reasoning, fmt.Sprintf("%d pattern(s) detected but none strong enough to act on", len(patterns)))
	}
	if snap != nil && snap.Summary != nil {
		reasoning = append(reasoning, fmt.Sprintf("Indicator votes: %d bullish vs %d bearish (%s)",
			snap.Summary.BullishSignals, snap.Summary.BearishSignals, snap.Summary.Sentiment))
	} else {
		reasoning = append(reasoning, "Insufficient history for indicator analysis")
	}

	return model.Decision{
		Action:           model.ActionWait,
		Confidence:       model.ConfidenceNone,
		RiskReward:       "1:2.5",
		Reasoning:        reasoning,
		IndicatorSignals: indicatorSignals(snap),
	}
}

// buildReasoning assembles the ordered, human-readable rationale: leading
// pattern, volume status, indicator notes, vote tally, risk percentage.
func buildReasoning(leading *model.Pattern, volConfirm, volWarning bool,
	snap *indicator.Snapshot, action model.Action, entry, stop float64) []string {

	out := make([]string, 0, 8)
	out = append(out, leading.Name+": "+leading.Description)

	switch {
	case volConfirm:
		out = append(out, "High volume confirms the move")
	case volWarning:
		out = append(out, "Low volume warns against the move")
	default:
		out = append(out, "No volume confirmation")
	}

	if snap != nil {
		if snap.RSI != nil {
			note := fmt.Sprintf("RSI at %.1f", *snap.RSI)
			if *snap.RSI > 70 {
				note += " (overbought)"
			} else if *snap.RSI < 30 {
				note += " (oversold)"
			}
			out = append(out, note)
		}
		if snap.MACD != nil {
			out = append(out, "MACD trend "+snap.MACD.Trend)
		}
		if snap.ADX != nil && snap.ADX.Trend != "no_trend" {
			aligned := (action == model.ActionLong && snap.ADX.Direction == "bullish") ||
				(action == model.ActionShort && snap.ADX.Direction == "bearish")
			if aligned {
				out = append(out, "Trend direction aligned with the setup")
			} else {
				out = append(out, "Trend direction conflicts with the setup")
			}
		}
		if snap.Summary != nil {
			out = append(out, fmt.Sprintf("Indicator votes: %d bullish vs %d bearish",
				snap.Summary.BullishSignals, snap.Summary.BearishSignals))
		}
	}

	if entry != 0 {
		riskPct := (entry - stop) / entry * 100
		if riskPct < 0 {
			riskPct = -riskPct
		}
		out = append(out, fmt.Sprintf("Risk %.2f%% from entry to stop", riskPct))
	}
	return out
}

// indicatorSignals flattens the snapshot into short display strings.
func indicatorSignals(snap *indicator.Snapshot) []string {
	if snap == nil {
		return nil
	}
	out := make([]string, 0, 6)
	if snap.RSI != nil {
		out = append(out, fmt.Sprintf("RSI %.1f", *snap.RSI))
	}
	if snap.MACD != nil {
		out = append(out, "MACD "+snap.MACD.Trend)
	}
	if snap.Stochastic != nil {
		out = append(out, "Stochastic "+snap.Stochastic.Signal)
	}
	if snap.ADX != nil {
		out = append(out, fmt.Sprintf("ADX %.1f %s", snap.ADX.ADX, snap.ADX.Direction))
	}
	if snap.Bollinger != nil {
		out = append(out, "Bollinger "+snap.Bollinger.Signal)
	}
	if snap.OBV != nil {
		out = append(out, "OBV "+snap.OBV.Trend)
	}
	return out
}

// strongestOfType returns the strongest pattern of the given type,
// preferring earlier detection order on ties so output stays deterministic.
func strongestOfType(patterns []model.Pattern, t model.PatternType) *model.Pattern {
	var best *model.Pattern
	for i := range patterns {
		p := &patterns[i]
		if p.Type != t {
			continue
		}
		if best == nil || rank(p.Strength) > rank(best.Strength) {
			best = p
		}
	}
	return best
}

func rank(s model.PatternStrength) int {
	switch s {
	case model.StrengthStrong:
		return 3
	case model.StrengthMedium:
		return 2
	default:
		return 1
	}
}

func hasPattern(patterns []model.Pattern, name string) bool {
	for i := range patterns {
		if patterns[i].Name == name {
			return true
		}
	}
	return false
}
