package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOBVTooShort(t *testing.T) {
	closes := make([]float64, OBVSlopeWindow)
	volumes := make([]float64, OBVSlopeWindow)
	assert.Nil(t, OBV(closes, volumes))
}

func TestOBVRising(t *testing.T) {
	n := 15
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100 + float64(i)
		volumes[i] = 10
	}
	r := OBV(closes, volumes)
	require.NotNil(t, r)
	// 14 up-closes at volume 10 each.
	assert.InDelta(t, 140, r.OBV, 1e-9)
	assert.Equal(t, "rising", r.Trend)
	assert.Greater(t, r.Slope, 0.01)
}

func TestOBVFalling(t *testing.T) {
	n := 15
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 200 - float64(i)
		volumes[i] = 10
	}
	r := OBV(closes, volumes)
	require.NotNil(t, r)
	assert.InDelta(t, -140, r.OBV, 1e-9)
	assert.Equal(t, "falling", r.Trend)
}

func TestOBVFlatCloses(t *testing.T) {
	n := 15
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		volumes[i] = 10
	}
	r := OBV(closes, volumes)
	require.NotNil(t, r)
	assert.Equal(t, 0.0, r.OBV)
	assert.Equal(t, "flat", r.Trend)
}

func TestVolumeProfilePOCAndValueArea(t *testing.T) {
	// Range 100..110 so zones are 1 wide. The dominant volume sits in the
	// top zone; the last close sits far below it.
	highs := []float64{101, 110, 105}
	lows := []float64{100, 109, 104}
	closes := []float64{100.5, 109.5, 104.5}
	volumes := []float64{10, 100, 20}

	r := VolumeProfile(highs, lows, closes, volumes)
	require.NotNil(t, r)
	assert.InDelta(t, 109.5, r.POC, 1e-9)
	require.Len(t, r.VolumeZones, VolumeZoneCount)

	// The POC zone alone already covers 70% of total volume (100/130).
	assert.InDelta(t, 109, r.ValueAreaLow, 1e-9)
	assert.InDelta(t, 110, r.ValueAreaHigh, 1e-9)
	assert.Equal(t, "below_value", r.Position)
}

func TestVolumeProfileAtPOC(t *testing.T) {
	highs := []float64{101, 110, 110}
	lows := []float64{100, 109, 109}
	closes := []float64{100.5, 109.5, 109.5}
	volumes := []float64{10, 100, 50}

	r := VolumeProfile(highs, lows, closes, volumes)
	require.NotNil(t, r)
	assert.Equal(t, "at_poc", r.Position)
}

func TestVolumeProfileFlatSeries(t *testing.T) {
	highs := []float64{100, 100}
	lows := []float64{100, 100}
	closes := []float64{100, 100}
	volumes := []float64{10, 10}
	assert.Nil(t, VolumeProfile(highs, lows, closes, volumes))
}

// trianglePath linearly interpolates highs/lows through anchor points,
// giving each bar a ±0.5 band around the interpolated value.
func trianglePath(anchors map[int]float64, n int) (highs, lows []float64) {
	var idxs []int
	for i := 0; i < n; i++ {
		if _, ok := anchors[i]; ok {
			idxs = append(idxs, i)
		}
	}
	values := make([]float64, n)
	for s := 0; s+1 < len(idxs); s++ {
		a, b := idxs[s], idxs[s+1]
		va, vb := anchors[a], anchors[b]
		for i := a; i <= b; i++ {
			frac := float64(i-a) / float64(b-a)
			values[i] = va + (vb-va)*frac
		}
	}
	highs = make([]float64, n)
	lows = make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = values[i] + 0.5
		lows[i] = values[i] - 0.5
	}
	return
}

func TestElliottWaveCorrective(t *testing.T) {
	// Pivots: low 90, high 105, low 95, high 110, an upward ABC zigzag.
	anchors := map[int]float64{0: 100, 8: 90, 15: 105, 22: 95, 29: 110, 39: 100}
	highs, lows := trianglePath(anchors, 40)

	r := ElliottWave(highs, lows)
	require.NotNil(t, r)
	assert.Equal(t, "corrective", r.Pattern)
	assert.Equal(t, "wave_C", r.Wave)
	require.Len(t, r.Points, 4)
	assert.InDelta(t, 0.6, r.Confidence, 1e-9)
	// Projection extends the A leg from B: 95 + (105-90).
	assert.InDelta(t, 110, r.Projection, 1.0)
}

func TestElliottWaveIndeterminate(t *testing.T) {
	// A monotonic ramp has no interior swing pivots.
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 100 + float64(i)
		lows[i] = 99 + float64(i)
	}
	r := ElliottWave(highs, lows)
	require.NotNil(t, r)
	assert.Equal(t, "indeterminate", r.Pattern)
	assert.InDelta(t, 0.2, r.Confidence, 1e-9)
}
