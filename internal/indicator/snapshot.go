package indicator

import (
	"strings"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// Snapshot is the composite indicator read for one series. Any sub-indicator
// whose minimum history is not met is nil and must be branched on by callers.
type Snapshot struct {
	RSI           *float64             `json:"rsi,omitempty"`
	MACD          *MACDResult          `json:"macd,omitempty"`
	Stochastic    *StochasticResult    `json:"stochastic,omitempty"`
	ADX           *ADXResult           `json:"adx,omitempty"`
	Bollinger     *BollingerResult     `json:"bollingerBands,omitempty"`
	ATR           *ATRResult           `json:"atr,omitempty"`
	OBV           *OBVResult           `json:"obv,omitempty"`
	VolumeProfile *VolumeProfileResult `json:"volumeProfile,omitempty"`
	ElliottWave   *ElliottResult       `json:"elliottWave,omitempty"`
	Summary       *Summary             `json:"summary"`
}

// Summary is the sentiment vote tally across the available indicators.
type Summary struct {
	Sentiment      string  `json:"sentiment"` // BULLISH, BEARISH, MIXED, NEUTRAL
	BullishSignals int     `json:"bullishSignals"`
	BearishSignals int     `json:"bearishSignals"`
	Strength       float64 `json:"strength"`
	Recommendation string  `json:"recommendation"`
}

// CalculateAll computes the full indicator snapshot for a series. Returns
// nil when fewer than MinCandles candles are available; callers fall back
// to pattern-only analysis in that case.
func CalculateAll(candles []model.Candle) *Snapshot {
	if len(candles) < MinCandles {
		return nil
	}

	closes := Closes(candles)
	highs := Highs(candles)
	lows := Lows(candles)
	volumes := Volumes(candles)

	snap := &Snapshot{
		MACD:          MACD(closes, MACDFast, MACDSlow, MACDSignal),
		Stochastic:    Stochastic(highs, lows, closes, StochPeriod, StochSmooth),
		ADX:           ADX(highs, lows, closes, ADXPeriod),
		Bollinger:     Bollinger(closes, BollingerPeriod, BollingerStdDev),
		ATR:           ATR(highs, lows, closes, ATRPeriod),
		OBV:           OBV(closes, volumes),
		VolumeProfile: VolumeProfile(highs, lows, closes, volumes),
		ElliottWave:   ElliottWave(highs, lows),
	}
	if rsi, ok := RSI(closes, RSIPeriod); ok {
		snap.RSI = &rsi
	}
	snap.Summary = summarize(snap, closes)
	return snap
}

// summarize tallies bullish vs bearish votes across RSI, MACD trend,
// Stochastic reversal, ADX-qualified direction, Bollinger signal and the
// EMA(20)/EMA(50) ordering. One side holding more than 70% of the votes
// sets the sentiment; both sides present means MIXED; no votes, NEUTRAL.
func summarize(s *Snapshot, closes []float64) *Summary {
	bullish, bearish := 0, 0

	if s.RSI != nil {
		if *s.RSI < 30 {
			bullish++
		} else if *s.RSI > 70 {
			bearish++
		}
	}
	if s.MACD != nil {
		if strings.HasPrefix(s.MACD.Trend, "bullish") {
			bullish++
		} else {
			bearish++
		}
	}
	if s.Stochastic != nil {
		switch s.Stochastic.Signal {
		case "bullish_reversal":
			bullish++
		case "bearish_reversal":
			bearish++
		}
	}
	if s.ADX != nil && (s.ADX.Trend == "strong" || s.ADX.Trend == "very_strong") {
		switch s.ADX.Direction {
		case "bullish":
			bullish++
		case "bearish":
			bearish++
		}
	}
	if s.Bollinger != nil {
		switch s.Bollinger.Signal {
		case "oversold":
			bullish++
		case "overbought":
			bearish++
		}
	}
	fast := EMA(closes, 20)
	slow := EMA(closes, 50)
	if fast != nil && slow != nil {
		if fast[len(fast)-1] > slow[len(slow)-1] {
			bullish++
		} else {
			bearish++
		}
	}

	total := bullish + bearish
	sum := &Summary{BullishSignals: bullish, BearishSignals: bearish}
	switch {
	case total == 0:
		sum.Sentiment = "NEUTRAL"
		sum.Recommendation = "insufficient_signal"
	case float64(bullish)/float64(total) > 0.7:
		sum.Sentiment = "BULLISH"
		sum.Recommendation = "consider_long"
	case float64(bearish)/float64(total) > 0.7:
		sum.Sentiment = "BEARISH"
		sum.Recommendation = "consider_short"
	default:
		sum.Sentiment = "MIXED"
		sum.Recommendation = "wait_for_confirmation"
	}
	if total > 0 {
		dominant := bullish
		if bearish > dominant {
			dominant = bearish
		}
		sum.Strength = float64(dominant) / float64(total) * 100
	}
	return sum
}
