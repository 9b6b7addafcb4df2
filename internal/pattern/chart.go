package pattern

import (
	"math"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// Minimum lookbacks per chart detector. Shorter history silently disables
// the detector.
const (
	doubleLookback = 30
	hsLookback     = 40
	wedgeLookback  = 20
	vLookback      = 12
)

// localPeaks returns indices within [from, to] that are local maxima of the
// high column among ±width neighbors.
func localPeaks(candles []model.Candle, from, to, width int) []int {
	var out []int
	for i := from + width; i <= to-width; i++ {
		peak := true
		for j := i - width; j <= i+width; j++ {
			if j != i && candles[j].High >= candles[i].High {
				peak = false
				break
			}
		}
		if peak {
			out = append(out, i)
		}
	}
	return out
}

// localTroughs mirrors localPeaks on the low column.
func localTroughs(candles []model.Candle, from, to, width int) []int {
	var out []int
	for i := from + width; i <= to-width; i++ {
		trough := true
		for j := i - width; j <= i+width; j++ {
			if j != i && candles[j].Low <= candles[i].Low {
				trough = false
				break
			}
		}
		if trough {
			out = append(out, i)
		}
	}
	return out
}

// detectDoubleExtreme finds double tops/bottoms inside a 30-candle lookback:
// two extrema within 2% of each other, at least 5 candles apart. The pattern
// confirms when price breaks the neckline (the trough/peak between them) and
// is "forming" while price sits within 2% of the neckline.
func detectDoubleExtreme(candles []model.Candle, idx int) *model.Pattern {
	if idx+1 < doubleLookback {
		return nil
	}
	from := idx - doubleLookback + 1
	close_ := candles[idx].Close

	peaks := localPeaks(candles, from, idx, 2)
	if len(peaks) >= 2 {
		p1, p2 := peaks[len(peaks)-2], peaks[len(peaks)-1]
		h1, h2 := candles[p1].High, candles[p2].High
		if p2-p1 >= 5 && math.Abs(h1-h2)/h1 <= 0.02 {
			neckline := candles[p1].Low
			for i := p1; i <= p2; i++ {
				if candles[i].Low < neckline {
					neckline = candles[i].Low
				}
			}
			if close_ < neckline {
				return &model.Pattern{
					Name:        "Double Top",
					Type:        model.PatternBearish,
					Strength:    model.StrengthStrong,
					Description: "Double top confirmed, price broke below the neckline",
				}
			}
			if math.Abs(close_-neckline)/neckline <= 0.02 {
				return &model.Pattern{
					Name:        "Double Top (Forming)",
					Type:        model.PatternBearish,
					Strength:    model.StrengthMedium,
					Description: "Double top forming, price testing the neckline",
				}
			}
		}
	}

	troughs := localTroughs(candles, from, idx, 2)
	if len(troughs) >= 2 {
		t1, t2 := troughs[len(troughs)-2], troughs[len(troughs)-1]
		l1, l2 := candles[t1].Low, candles[t2].Low
		if t2-t1 >= 5 && math.Abs(l1-l2)/l1 <= 0.02 {
			neckline := candles[t1].High
			for i := t1; i <= t2; i++ {
				if candles[i].High > neckline {
					neckline = candles[i].High
				}
			}
			if close_ > neckline {
				return &model.Pattern{
					Name:        "Double Bottom",
					Type:        model.PatternBullish,
					Strength:    model.StrengthStrong,
					Description: "Double bottom confirmed, price broke above the neckline",
				}
			}
			if math.Abs(close_-neckline)/neckline <= 0.02 {
				return &model.Pattern{
					Name:        "Double Bottom (Forming)",
					Type:        model.PatternBullish,
					Strength:    model.StrengthMedium,
					Description: "Double bottom forming, price testing the neckline",
				}
			}
		}
	}
	return nil
}

// detectHeadAndShoulders looks for three peaks where the middle exceeds both
// outer ones and the outer pair sits within 5% of each other. The neckline
// is the higher of the two connecting lows; a close below it confirms.
// The inverse pattern mirrors everything on troughs.
func detectHeadAndShoulders(candles []model.Candle, idx int) *model.Pattern {
	if idx+1 < hsLookback {
		return nil
	}
	from := idx - hsLookback + 1
	close_ := candles[idx].Close

	peaks := localPeaks(candles, from, idx, 2)
	if len(peaks) >= 3 {
		l, h, r := peaks[len(peaks)-3], peaks[len(peaks)-2], peaks[len(peaks)-1]
		lh, hh, rh := candles[l].High, candles[h].High, candles[r].High
		if hh > lh && hh > rh && math.Abs(lh-rh)/lh <= 0.05 {
			neckline := math.Max(minLow(candles, l, h), minLow(candles, h, r))
			if close_ < neckline {
				return &model.Pattern{
					Name:        "Head & Shoulders",
					Type:        model.PatternBearish,
					Strength:    model.StrengthStrong,
					Description: "Head and shoulders confirmed, price broke below the neckline",
				}
			}
		}
	}

	troughs := localTroughs(candles, from, idx, 2)
	if len(troughs) >= 3 {
		l, h, r := troughs[len(troughs)-3], troughs[len(troughs)-2], troughs[len(troughs)-1]
		ll, hl, rl := candles[l].Low, candles[h].Low, candles[r].Low
		if hl < ll && hl < rl && math.Abs(ll-rl)/ll <= 0.05 {
			neckline := math.Min(maxHigh(candles, l, h), maxHigh(candles, h, r))
			if close_ > neckline {
				return &model.Pattern{
					Name:        "Inverse Head & Shoulders",
					Type:        model.PatternBullish,
					Strength:    model.StrengthStrong,
					Description: "Inverse head and shoulders confirmed, price broke above the neckline",
				}
			}
		}
	}
	return nil
}

// detectWedge fits regression lines through the highs and lows of a
// 20-candle window. Both slopes same-signed with a converging range (final
// range under 70% of the first) and a near-touch of the projected trendline
// yields a rising (bearish) or falling (bullish) wedge.
func detectWedge(candles []model.Candle, idx int) *model.Pattern {
	if idx+1 < wedgeLookback {
		return nil
	}
	from := idx - wedgeLookback + 1
	highs := make([]float64, wedgeLookback)
	lows := make([]float64, wedgeLookback)
	for i := 0; i < wedgeLookback; i++ {
		highs[i] = candles[from+i].High
		lows[i] = candles[from+i].Low
	}

	hSlope, hIntercept := linreg(highs)
	lSlope, lIntercept := linreg(lows)

	firstRange := highs[0] - lows[0]
	lastRange := highs[wedgeLookback-1] - lows[wedgeLookback-1]
	if firstRange <= 0 || lastRange >= firstRange*0.70 {
		return nil
	}

	x := float64(wedgeLookback - 1)
	c := &candles[idx]

	if hSlope > 0 && lSlope > 0 {
		projUpper := hIntercept + hSlope*x
		if projUpper > 0 && math.Abs(c.High-projUpper)/projUpper <= 0.01 {
			return &model.Pattern{
				Name:        "Rising Wedge",
				Type:        model.PatternBearish,
				Strength:    model.StrengthMedium,
				Description: "Rising wedge with converging trendlines, bearish breakdown likely",
			}
		}
	}
	if hSlope < 0 && lSlope < 0 {
		projLower := lIntercept + lSlope*x
		if projLower > 0 && math.Abs(c.Low-projLower)/projLower <= 0.01 {
			return &model.Pattern{
				Name:        "Falling Wedge",
				Type:        model.PatternBullish,
				Strength:    model.StrengthMedium,
				Description: "Falling wedge with converging trendlines, bullish breakout likely",
			}
		}
	}
	return nil
}

// detectVReversal finds a single extreme inside the lookback with a >5% move
// into it and back out, the recovery retracing at least 70% of the move,
// confirmed by pivot volume at or above 1.5× the window average.
func detectVReversal(candles []model.Candle, idx int) *model.Pattern {
	if idx+1 < vLookback {
		return nil
	}
	from := idx - vLookback + 1
	window := candles[from : idx+1]

	avgVol := 0.0
	for i := range window {
		avgVol += window[i].Volume
	}
	avgVol /= float64(len(window))

	// V-bottom: deepest low strictly inside the window.
	lowIdx := 0
	highIdx := 0
	for i := range window {
		if window[i].Low < window[lowIdx].Low {
			lowIdx = i
		}
		if window[i].High > window[highIdx].High {
			highIdx = i
		}
	}
	last := window[len(window)-1].Close

	if lowIdx > 0 && lowIdx < len(window)-1 {
		pivotLow := window[lowIdx].Low
		preHigh := window[0].High
		for i := 0; i < lowIdx; i++ {
			if window[i].High > preHigh {
				preHigh = window[i].High
			}
		}
		drop := preHigh - pivotLow
		recovery := last - pivotLow
		if preHigh > 0 && pivotLow > 0 &&
			drop/preHigh > 0.05 && recovery/pivotLow > 0.05 &&
			recovery >= drop*0.70 &&
			avgVol > 0 && window[lowIdx].Volume >= avgVol*1.5 {
			return &model.Pattern{
				Name:        "V-Bottom Reversal",
				Type:        model.PatternBullish,
				Strength:    model.StrengthStrong,
				Description: "Sharp sell-off fully reversed on elevated volume",
			}
		}
	}

	if highIdx > 0 && highIdx < len(window)-1 {
		pivotHigh := window[highIdx].High
		preLow := window[0].Low
		for i := 0; i < highIdx; i++ {
			if window[i].Low < preLow {
				preLow = window[i].Low
			}
		}
		rally := pivotHigh - preLow
		decline := pivotHigh - last
		if preLow > 0 && pivotHigh > 0 &&
			rally/preLow > 0.05 && decline/pivotHigh > 0.05 &&
			decline >= rally*0.70 &&
			avgVol > 0 && window[highIdx].Volume >= avgVol*1.5 {
			return &model.Pattern{
				Name:        "V-Top Reversal",
				Type:        model.PatternBearish,
				Strength:    model.StrengthStrong,
				Description: "Sharp rally fully reversed on elevated volume",
			}
		}
	}
	return nil
}

func minLow(candles []model.Candle, from, to int) float64 {
	m := candles[from].Low
	for i := from + 1; i <= to; i++ {
		if candles[i].Low < m {
			m = candles[i].Low
		}
	}
	return m
}

func maxHigh(candles []model.Candle, from, to int) float64 {
	m := candles[from].High
	for i := from + 1; i <= to; i++ {
		if candles[i].High > m {
			m = candles[i].High
		}
	}
	return m
}

// linreg returns the least-squares slope and intercept of values against
// indices 0..n-1.
func linreg(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if len(values) < 2 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
