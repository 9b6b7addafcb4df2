package indicator

import "math"

// ADXPeriod is the standard ADX lookback.
const ADXPeriod = 14

// ADXResult holds the latest ADX value, directional indices, a bucketed
// trend strength and the dominant direction.
type ADXResult struct {
	ADX       float64 `json:"adx"`
	PlusDI    float64 `json:"plusDI"`
	MinusDI   float64 `json:"minusDI"`
	Trend     string  `json:"trend"`
	Direction string  `json:"direction"`
}

// ADX computes true range and directional movement per bar, smoothed with
// Wilder's cumulative-sum smoothing (sum = sum - sum/period + new).
// DI± = smoothed DM / smoothed TR × 100; DX = |+DI−−DI|/(+DI+−DI) × 100.
//
// Note: the reported ADX is the single latest DX value, not a rolling
// average of DX. This mirrors upstream behavior and is asserted in tests;
// a textbook ADX would additionally Wilder-smooth DX over `period` bars.
func ADX(highs, lows, closes []float64, period int) *ADXResult {
	n := len(closes)
	if n < period+1 || len(highs) != n || len(lows) != n {
		return nil
	}

	var smTR, smPlus, smMinus float64
	for i := 1; i < n; i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1])
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}

		if i <= period {
			smTR += tr
			smPlus += plusDM
			smMinus += minusDM
			continue
		}
		p := float64(period)
		smTR = smTR - smTR/p + tr
		smPlus = smPlus - smPlus/p + plusDM
		smMinus = smMinus - smMinus/p + minusDM
	}

	if smTR == 0 {
		return &ADXResult{Trend: "no_trend", Direction: "neutral"}
	}
	plusDI := smPlus / smTR * 100
	minusDI := smMinus / smTR * 100

	dx := 0.0
	if plusDI+minusDI > 0 {
		dx = math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100
	}

	trend := "no_trend"
	switch {
	case dx >= 50:
		trend = "very_strong"
	case dx >= 25:
		trend = "strong"
	case dx >= 20:
		trend = "emerging"
	}

	direction := "neutral"
	if plusDI > minusDI {
		direction = "bullish"
	} else if minusDI > plusDI {
		direction = "bearish"
	}

	return &ADXResult{
		ADX:       dx,
		PlusDI:    plusDI,
		MinusDI:   minusDI,
		Trend:     trend,
		Direction: direction,
	}
}

// trueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if d := math.Abs(high - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(low - prevClose); d > tr {
		tr = d
	}
	return tr
}
