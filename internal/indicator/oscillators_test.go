package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func risingBars(n int) (highs, lows, closes []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	closes = make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100 + float64(i)
		highs[i] = closes[i]
		lows[i] = closes[i] - 2
	}
	return
}

func TestStochasticTooShort(t *testing.T) {
	h, l, c := risingBars(StochPeriod + StochSmooth - 1)
	assert.Nil(t, Stochastic(h, l, c, StochPeriod, StochSmooth))
}

func TestStochasticCloseAtHighIsOverbought(t *testing.T) {
	h, l, c := risingBars(30)
	r := Stochastic(h, l, c, StochPeriod, StochSmooth)
	require.NotNil(t, r)
	assert.Greater(t, r.K, 80.0)
	assert.Equal(t, "overbought", r.Signal)
}

func TestStochasticCloseAtLowIsOversold(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 200 - float64(i)
		lows[i] = closes[i]
		highs[i] = closes[i] + 2
	}
	r := Stochastic(highs, lows, closes, StochPeriod, StochSmooth)
	require.NotNil(t, r)
	assert.Less(t, r.K, 20.0)
	assert.Equal(t, "oversold", r.Signal)
}

func TestADXTooShort(t *testing.T) {
	h, l, c := risingBars(ADXPeriod)
	assert.Nil(t, ADX(h, l, c, ADXPeriod))
}

func TestADXUptrendBullish(t *testing.T) {
	h, l, c := risingBars(40)
	r := ADX(h, l, c, ADXPeriod)
	require.NotNil(t, r)
	assert.Equal(t, "bullish", r.Direction)
	assert.Greater(t, r.PlusDI, r.MinusDI)
	assert.Contains(t, []string{"strong", "very_strong"}, r.Trend)
}

func TestADXReportsLatestDX(t *testing.T) {
	// The ADX field is the single latest DX derived from the returned DIs,
	// not a rolling average of DX values.
	h, l, c := risingBars(40)
	r := ADX(h, l, c, ADXPeriod)
	require.NotNil(t, r)
	wantDX := math.Abs(r.PlusDI-r.MinusDI) / (r.PlusDI + r.MinusDI) * 100
	assert.InDelta(t, wantDX, r.ADX, 1e-9)
}

func TestBollingerTooShort(t *testing.T) {
	closes := make([]float64, BollingerPeriod-1)
	assert.Nil(t, Bollinger(closes, BollingerPeriod, BollingerStdDev))
}

func TestBollingerFlatSeriesSqueezes(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	r := Bollinger(closes, BollingerPeriod, BollingerStdDev)
	require.NotNil(t, r)
	assert.Equal(t, 100.0, r.Middle)
	assert.Equal(t, r.Upper, r.Lower)
	assert.Equal(t, 0.0, r.Bandwidth)
	assert.Equal(t, "squeeze", r.Signal)
}

func TestBollingerBreakoutOverbought(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 110
	r := Bollinger(closes, BollingerPeriod, BollingerStdDev)
	require.NotNil(t, r)
	assert.Equal(t, "overbought", r.Signal)
	assert.Greater(t, r.PercentB, 1.0)
}

func TestBollingerPopulationStdDev(t *testing.T) {
	// 20 values: 19 at 100 plus one at 110. Population variance is
	// (19*0.5^2 + 9.5^2)/20 = 4.75.
	closes := make([]float64, BollingerPeriod)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 110
	r := Bollinger(closes, BollingerPeriod, BollingerStdDev)
	require.NotNil(t, r)
	sd := math.Sqrt(4.75)
	assert.InDelta(t, 100.5+2*sd, r.Upper, 1e-9)
	assert.InDelta(t, 100.5-2*sd, r.Lower, 1e-9)
}

func TestATRTooShort(t *testing.T) {
	h, l, c := risingBars(ATRPeriod)
	assert.Nil(t, ATR(h, l, c, ATRPeriod))
}

func TestATRConstantRange(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		highs[i] = 101
		lows[i] = 99
	}
	r := ATR(highs, lows, closes, ATRPeriod)
	require.NotNil(t, r)
	assert.InDelta(t, 2, r.ATR, 1e-9)
	assert.InDelta(t, 2, r.ATRPercent, 1e-9)
	assert.Equal(t, "moderate", r.Volatility)
}
