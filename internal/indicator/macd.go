package indicator

// MACD default parameters (fast, slow, signal).
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// MACDResult holds the latest MACD line, signal line, histogram and a
// classified trend: bullish, bearish, bullish_crossover or bearish_crossover.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	Trend     string  `json:"trend"`
}

// MACD computes EMA(fast)−EMA(slow) aligned by index offset: the slow EMA
// array is shorter, so the fast array is sliced forward to match. The signal
// line is an EMA(signalPeriod) of the MACD line. Returns nil when the series
// is too short for a signal value (slow+signal−1 closes).
func MACD(closes []float64, fast, slow, signalPeriod int) *MACDResult {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	if fastEMA == nil || slowEMA == nil {
		return nil
	}

	offset := len(fastEMA) - len(slowEMA)
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signal := EMA(line, signalPeriod)
	if signal == nil {
		return nil
	}

	macd := line[len(line)-1]
	sig := signal[len(signal)-1]

	trend := "bearish"
	if macd > sig {
		trend = "bullish"
	}
	// Crossover detection needs one prior point on both lines.
	if len(line) >= 2 && len(signal) >= 2 {
		prevMACD := line[len(line)-2]
		prevSig := signal[len(signal)-2]
		if prevMACD <= prevSig && macd > sig {
			trend = "bullish_crossover"
		} else if prevMACD >= prevSig && macd < sig {
			trend = "bearish_crossover"
		}
	}

	return &MACDResult{
		MACD:      macd,
		Signal:    sig,
		Histogram: macd - sig,
		Trend:     trend,
	}
}
