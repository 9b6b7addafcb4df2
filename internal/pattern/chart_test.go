package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

type anchor struct {
	idx int
	val float64
}

// pathCandles interpolates linearly between anchors and wraps each value in a
// candle with a fixed half-range of 0.5 and a small directional body.
func pathCandles(anchors []anchor, bullish bool, volume float64) []model.Candle {
	n := anchors[len(anchors)-1].idx + 1
	values := make([]float64, n)
	for a := 0; a < len(anchors)-1; a++ {
		lo, hi := anchors[a], anchors[a+1]
		span := hi.idx - lo.idx
		for i := lo.idx; i <= hi.idx; i++ {
			frac := float64(i-lo.idx) / float64(span)
			values[i] = lo.val + (hi.val-lo.val)*frac
		}
	}
	out := make([]model.Candle, n)
	for i, v := range values {
		open, close := v-0.3, v+0.3
		if !bullish {
			open, close = v+0.3, v-0.3
		}
		out[i] = bar(open, v+0.5, v-0.5, close, volume)
	}
	return out
}

func TestHeadAndShouldersConfirmed(t *testing.T) {
	candles := pathCandles([]anchor{
		{0, 100}, {10, 110}, {15, 100}, {20, 120}, {25, 100}, {30, 110.5}, {39, 98},
	}, true, 100)
	got := Detect(candles, len(candles)-1)
	p := findPattern(t, got, "Head & Shoulders")
	assert.Equal(t, model.PatternBearish, p.Type)
	assert.Equal(t, model.StrengthStrong, p.Strength)
}

func TestHeadAndShouldersNeedsFullLookback(t *testing.T) {
	candles := pathCandles([]anchor{
		{0, 100}, {10, 110}, {15, 100}, {20, 120}, {25, 100}, {30, 110.5}, {39, 98},
	}, true, 100)
	got := Detect(candles[1:], len(candles)-2)
	assert.NotContains(t, names(got), "Head & Shoulders")
}

func TestInverseHeadAndShouldersConfirmed(t *testing.T) {
	candles := pathCandles([]anchor{
		{0, 120}, {10, 110}, {15, 120}, {20, 100}, {25, 120}, {30, 109.5}, {39, 122},
	}, true, 100)
	got := Detect(candles, len(candles)-1)
	p := findPattern(t, got, "Inverse Head & Shoulders")
	assert.Equal(t, model.PatternBullish, p.Type)
}

func TestDoubleTopConfirmed(t *testing.T) {
	candles := pathCandles([]anchor{
		{0, 100}, {10, 110}, {15, 104}, {20, 110.1}, {34, 102.9},
	}, true, 100)
	got := Detect(candles, len(candles)-1)
	p := findPattern(t, got, "Double Top")
	assert.Equal(t, model.PatternBearish, p.Type)
	assert.Equal(t, model.StrengthStrong, p.Strength)
}

func TestDoubleTopForming(t *testing.T) {
	// Close sits above the neckline but within 2% of it.
	candles := pathCandles([]anchor{
		{0, 100}, {10, 110}, {15, 104}, {20, 110.1}, {34, 103.6},
	}, true, 100)
	got := Detect(candles, len(candles)-1)
	p := findPattern(t, got, "Double Top (Forming)")
	assert.Equal(t, model.StrengthMedium, p.Strength)
}

func TestDoubleBottomConfirmed(t *testing.T) {
	candles := pathCandles([]anchor{
		{0, 110}, {10, 100}, {15, 106}, {20, 99.9}, {34, 107.3},
	}, true, 100)
	got := Detect(candles, len(candles)-1)
	p := findPattern(t, got, "Double Bottom")
	assert.Equal(t, model.PatternBullish, p.Type)
}

func TestRisingWedge(t *testing.T) {
	candles := make([]model.Candle, 20)
	for i := range candles {
		low := 100 + 0.8*float64(i)
		high := 102 + 0.7*float64(i)
		mid := (low + high) / 2
		candles[i] = bar(mid-0.025, high, low, mid+0.025, 100)
	}
	got := Detect(candles, 19)
	p := findPattern(t, got, "Rising Wedge")
	assert.Equal(t, model.PatternBearish, p.Type)
}

func TestFallingWedge(t *testing.T) {
	candles := make([]model.Candle, 20)
	for i := range candles {
		high := 115 - 0.8*float64(i)
		low := 113 - 0.7*float64(i)
		mid := (low + high) / 2
		candles[i] = bar(mid+0.025, high, low, mid-0.025, 100)
	}
	got := Detect(candles, 19)
	p := findPattern(t, got, "Falling Wedge")
	assert.Equal(t, model.PatternBullish, p.Type)
}

func TestWedgeRequiresConvergence(t *testing.T) {
	// Parallel channel: both slopes positive but the range never narrows.
	candles := make([]model.Candle, 20)
	for i := range candles {
		low := 100 + 0.7*float64(i)
		candles[i] = bar(low+0.9, low+2, low, low+1.1, 100)
	}
	got := Detect(candles, 19)
	assert.NotContains(t, names(got), "Rising Wedge")
}

func TestVBottomReversal(t *testing.T) {
	vals := []float64{100, 97.5, 95, 92.5, 91, 89.5, 91, 93, 95, 96.5, 97.5, 98.5}
	candles := make([]model.Candle, len(vals))
	for i, v := range vals {
		candles[i] = bar(v-0.3, v+0.5, v-0.5, v+0.3, 100)
	}
	candles[5].Volume = 400
	got := Detect(candles, len(candles)-1)
	p := findPattern(t, got, "V-Bottom Reversal")
	assert.Equal(t, model.PatternBullish, p.Type)
	assert.Equal(t, model.StrengthStrong, p.Strength)
}

func TestVBottomNeedsVolume(t *testing.T) {
	vals := []float64{100, 97.5, 95, 92.5, 91, 89.5, 91, 93, 95, 96.5, 97.5, 98.5}
	candles := make([]model.Candle, len(vals))
	for i, v := range vals {
		candles[i] = bar(v-0.3, v+0.5, v-0.5, v+0.3, 100)
	}
	got := Detect(candles, len(candles)-1)
	assert.NotContains(t, names(got), "V-Bottom Reversal")
}

func TestVTopReversal(t *testing.T) {
	vals := []float64{100, 102.5, 105, 107.5, 109, 111, 109, 107, 105, 103.5, 102.5, 101.5}
	candles := make([]model.Candle, len(vals))
	for i, v := range vals {
		candles[i] = bar(v+0.3, v+0.5, v-0.5, v-0.3, 100)
	}
	candles[5].Volume = 400
	got := Detect(candles, len(candles)-1)
	p := findPattern(t, got, "V-Top Reversal")
	assert.Equal(t, model.PatternBearish, p.Type)
}
