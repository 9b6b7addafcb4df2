// Package indicator provides technical indicator calculations over candle
// series. All functions are pure: they read a snapshot of the series and
// return new values. A function whose input is shorter than its required
// period returns an explicit unavailable result (nil pointer or ok=false);
// callers must branch on it, never assume zero.
package indicator

import "github.com/Bala-Nallamilli/futures-trading-framework/internal/model"

// MinCandles is the minimum series length for the composite CalculateAll.
const MinCandles = 30

// Closes extracts the close column from a candle series.
func Closes(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}

// Highs extracts the high column from a candle series.
func Highs(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].High
	}
	return out
}

// Lows extracts the low column from a candle series.
func Lows(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Low
	}
	return out
}

// Volumes extracts the volume column from a candle series.
func Volumes(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Volume
	}
	return out
}

// SMA returns the simple moving average of the trailing `period` values,
// one output per input index >= period-1. Returns nil if len < period.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}

// EMA returns the exponential moving average series, seeded with the simple
// average of the first `period` values, then the standard recurrence
// ema = (value-ema)*k + ema with k = 2/(period+1). Output index 0
// corresponds to input index period-1. Returns nil if len < period.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)

	out := make([]float64, 0, len(values)-period+1)
	out = append(out, ema)
	for _, v := range values[period:] {
		ema = (v-ema)*k + ema
		out = append(out, ema)
	}
	return out
}

// slope returns the least-squares linear-regression slope of values against
// their indices 0..n-1. Returns 0 for fewer than 2 points.
func slope(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 2 {
		return 0
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
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
