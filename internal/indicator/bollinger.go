package indicator

import "math"

// Bollinger default parameters.
const (
	BollingerPeriod = 20
	BollingerStdDev = 2.0
)

// BollingerResult holds the latest band values and derived measures.
type BollingerResult struct {
	Upper     float64 `json:"upper"`
	Middle    float64 `json:"middle"`
	Lower     float64 `json:"lower"`
	PercentB  float64 `json:"percentB"`
	Bandwidth float64 `json:"bandwidth"`
	Signal    string  `json:"signal"`
}

// Bollinger computes SMA(period) ± mult × population stddev over the last
// `period` closes. percentB = (price−lower)/(upper−lower); bandwidth =
// (upper−lower)/middle × 100. A bandwidth under 5 flags a squeeze.
// Returns nil when fewer than `period` closes are available.
func Bollinger(closes []float64, period int, mult float64) *BollingerResult {
	if len(closes) < period {
		return nil
	}
	window := closes[len(closes)-period:]

	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(period)

	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(period)
	sd := math.Sqrt(variance)

	upper := mean + mult*sd
	lower := mean - mult*sd
	price := closes[len(closes)-1]

	percentB := 0.5
	if upper > lower {
		percentB = (price - lower) / (upper - lower)
	}
	bandwidth := 0.0
	if mean != 0 {
		bandwidth = (upper - lower) / mean * 100
	}

	signal := "neutral"
	switch {
	case price > upper:
		signal = "overbought"
	case price < lower:
		signal = "oversold"
	case bandwidth < 5:
		signal = "squeeze"
	}

	return &BollingerResult{
		Upper:     upper,
		Middle:    mean,
		Lower:     lower,
		PercentB:  percentB,
		Bandwidth: bandwidth,
		Signal:    signal,
	}
}
