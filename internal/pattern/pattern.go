// Package pattern detects candlestick and chart patterns over a candle
// series. Detection is a pure function of the series: only the most recent
// candle is analyzed, historical candles are context. Detectors whose
// minimum lookback is not met are silently disabled; short history is
// never an error.
package pattern

import "github.com/Bala-Nallamilli/futures-trading-framework/internal/model"

// Detect runs every detector against the candle at index idx (normally the
// last) and returns the matched patterns in a deterministic order:
// single-bar, then multi-bar, then chart patterns.
func Detect(candles []model.Candle, idx int) []model.Pattern {
	if idx < 0 || idx >= len(candles) {
		return nil
	}
	var out []model.Pattern

	add := func(p *model.Pattern) {
		if p != nil {
			out = append(out, *p)
		}
	}

	add(detectDoji(candles, idx))
	add(detectHammerFamily(candles, idx))
	add(detectShootingStarFamily(candles, idx))
	add(detectMarubozu(candles, idx))
	add(detectEngulfing(candles, idx))
	add(detectStar(candles, idx))
	add(detectVolumeSpike(candles, idx))
	add(detectTweezer(candles, idx))
	add(detectPiercing(candles, idx))
	add(detectThreeSoldiers(candles, idx))
	add(detectDoubleExtreme(candles, idx))
	add(detectHeadAndShoulders(candles, idx))
	add(detectWedge(candles, idx))
	add(detectVReversal(candles, idx))

	return out
}

// avgClose returns the mean close of the `n` candles preceding idx.
// Falls back to the current close when there is no history.
func avgClose(candles []model.Candle, idx, n int) float64 {
	start := idx - n
	if start < 0 {
		start = 0
	}
	if start == idx {
		return candles[idx].Close
	}
	sum := 0.0
	for i := start; i < idx; i++ {
		sum += candles[i].Close
	}
	return sum / float64(idx-start)
}
