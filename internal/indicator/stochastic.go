package indicator

// Stochastic default parameters.
const (
	StochPeriod = 14
	StochSmooth = 3
)

// StochasticResult holds the latest %K, %D and a bucketed signal:
// overbought, oversold, bearish_reversal, bullish_reversal or neutral.
type StochasticResult struct {
	K      float64 `json:"k"`
	D      float64 `json:"d"`
	Signal string  `json:"signal"`
}

// Stochastic computes %K from a rolling period-bar high/low window and
// %D as a smooth-bar SMA of %K. Reversal variants fire when %K crosses %D
// inside the extreme zone (80/20). Returns nil when the series is too short
// for a %D value plus one prior point for cross detection.
func Stochastic(highs, lows, closes []float64, period, smooth int) *StochasticResult {
	n := len(closes)
	// Need smooth+1 %K values: smooth for %D plus one prior for the cross.
	if n < period+smooth || len(highs) != n || len(lows) != n {
		return nil
	}

	kvals := make([]float64, 0, n-period+1)
	for i := period - 1; i < n; i++ {
		hh, ll := highs[i], lows[i]
		for j := i - period + 1; j < i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		k := 50.0
		if hh > ll {
			k = (closes[i] - ll) / (hh - ll) * 100
		}
		kvals = append(kvals, k)
	}

	dvals := SMA(kvals, smooth)
	if dvals == nil {
		return nil
	}

	k := kvals[len(kvals)-1]
	d := dvals[len(dvals)-1]

	signal := "neutral"
	switch {
	case k > 80:
		signal = "overbought"
		if len(dvals) >= 2 {
			prevK := kvals[len(kvals)-2]
			prevD := dvals[len(dvals)-2]
			if prevK >= prevD && k < d {
				signal = "bearish_reversal"
			}
		}
	case k < 20:
		signal = "oversold"
		if len(dvals) >= 2 {
			prevK := kvals[len(kvals)-2]
			prevD := dvals[len(dvals)-2]
			if prevK <= prevD && k > d {
				signal = "bullish_reversal"
			}
		}
	}

	return &StochasticResult{K: k, D: d, Signal: signal}
}
