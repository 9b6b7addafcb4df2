package indicator

// ATRPeriod is the standard ATR lookback.
const ATRPeriod = 14

// ATRResult holds the latest average true range and a volatility bucket
// derived from ATR as a percentage of the last close.
type ATRResult struct {
	ATR        float64 `json:"atr"`
	ATRPercent float64 `json:"atrPercent"`
	Volatility string  `json:"volatility"`
}

// ATR computes a Wilder-smoothed average true range: seeded with the simple
// average of the first `period` true ranges, then
// atr = (atr*(period-1) + tr) / period. Returns nil when fewer than
// period+1 bars are available.
func ATR(highs, lows, closes []float64, period int) *ATRResult {
	n := len(closes)
	if n < period+1 || len(highs) != n || len(lows) != n {
		return nil
	}

	atr := 0.0
	for i := 1; i <= period; i++ {
		atr += trueRange(highs[i], lows[i], closes[i-1])
	}
	atr /= float64(period)

	p := float64(period)
	for i := period + 1; i < n; i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1])
		atr = (atr*(p-1) + tr) / p
	}

	pct := 0.0
	if last := closes[n-1]; last != 0 {
		pct = atr / last * 100
	}

	volatility := "low"
	switch {
	case pct >= 5:
		volatility = "extreme"
	case pct >= 2.5:
		volatility = "high"
	case pct >= 1:
		volatility = "moderate"
	}

	return &ATRResult{ATR: atr, ATRPercent: pct, Volatility: volatility}
}
