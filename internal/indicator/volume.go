package indicator

import "math"

// OBVSlopeWindow is the number of trailing OBV values used for the slope.
const OBVSlopeWindow = 10

// OBVResult holds the cumulative on-balance volume, its normalized slope
// over the trailing window, and a trend classification.
type OBVResult struct {
	OBV   float64 `json:"obv"`
	Trend string  `json:"trend"`
	Slope float64 `json:"slope"`
}

// OBV accumulates signed volume: add on a higher close, subtract on a lower
// close, unchanged on an equal close. The trend comes from the sign of a
// least-squares slope over the last OBVSlopeWindow values, normalized by the
// window's max absolute value so the slope is scale-independent.
// Returns nil when fewer than OBVSlopeWindow+1 closes are available.
func OBV(closes, volumes []float64) *OBVResult {
	n := len(closes)
	if n < OBVSlopeWindow+1 || len(volumes) != n {
		return nil
	}

	series := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			series[i] = series[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			series[i] = series[i-1] - volumes[i]
		default:
			series[i] = series[i-1]
		}
	}

	window := series[n-OBVSlopeWindow:]
	maxAbs := 0.0
	for _, v := range window {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}
	normalized := make([]float64, len(window))
	if maxAbs > 0 {
		for i, v := range window {
			normalized[i] = v / maxAbs
		}
	}
	s := slope(normalized)

	trend := "flat"
	if s > 0.01 {
		trend = "rising"
	} else if s < -0.01 {
		trend = "falling"
	}

	return &OBVResult{OBV: series[n-1], Trend: trend, Slope: s}
}

// VolumeZoneCount is the number of equal price partitions in the profile.
const VolumeZoneCount = 10

// VolumeZone is one horizontal price partition with its accumulated volume.
type VolumeZone struct {
	PriceLow  float64 `json:"priceLow"`
	PriceHigh float64 `json:"priceHigh"`
	Volume    float64 `json:"volume"`
}

// VolumeProfileResult holds the point of control, the 70% value area and
// the position of the last price relative to it.
type VolumeProfileResult struct {
	POC           float64      `json:"poc"`
	ValueAreaHigh float64      `json:"valueAreaHigh"`
	ValueAreaLow  float64      `json:"valueAreaLow"`
	Position      string       `json:"position"`
	VolumeZones   []VolumeZone `json:"volumeZones"`
}

// VolumeProfile partitions the series' high/low range into VolumeZoneCount
// equal zones and accumulates each candle's volume into the zone holding its
// midpoint price. POC is the max-volume zone; the value area extends outward
// from the POC until it holds ≥70% of total volume, preferring the side with
// the higher adjacent zone volume. Returns nil on an empty or flat series.
func VolumeProfile(highs, lows, closes, volumes []float64) *VolumeProfileResult {
	n := len(closes)
	if n == 0 || len(highs) != n || len(lows) != n || len(volumes) != n {
		return nil
	}

	minPrice, maxPrice := lows[0], highs[0]
	for i := 1; i < n; i++ {
		if lows[i] < minPrice {
			minPrice = lows[i]
		}
		if highs[i] > maxPrice {
			maxPrice = highs[i]
		}
	}
	if maxPrice <= minPrice {
		return nil
	}

	zoneSize := (maxPrice - minPrice) / VolumeZoneCount
	zones := make([]VolumeZone, VolumeZoneCount)
	for i := range zones {
		zones[i].PriceLow = minPrice + float64(i)*zoneSize
		zones[i].PriceHigh = zones[i].PriceLow + zoneSize
	}

	total := 0.0
	for i := 0; i < n; i++ {
		mid := (highs[i] + lows[i]) / 2
		zi := int((mid - minPrice) / zoneSize)
		if zi >= VolumeZoneCount {
			zi = VolumeZoneCount - 1
		}
		if zi < 0 {
			zi = 0
		}
		zones[zi].Volume += volumes[i]
		total += volumes[i]
	}
	if total == 0 {
		return nil
	}

	pocIdx := 0
	for i, z := range zones {
		if z.Volume > zones[pocIdx].Volume {
			pocIdx = i
		}
	}

	// Grow the value area outward from the POC until it holds 70% of volume,
	// preferring whichever adjacent zone carries more volume.
	lo, hi := pocIdx, pocIdx
	area := zones[pocIdx].Volume
	for area < total*0.70 && (lo > 0 || hi < VolumeZoneCount-1) {
		below, above := -1.0, -1.0
		if lo > 0 {
			below = zones[lo-1].Volume
		}
		if hi < VolumeZoneCount-1 {
			above = zones[hi+1].Volume
		}
		if above > below {
			hi++
			area += zones[hi].Volume
		} else {
			lo--
			area += zones[lo].Volume
		}
	}

	poc := (zones[pocIdx].PriceLow + zones[pocIdx].PriceHigh) / 2
	vah := zones[hi].PriceHigh
	val := zones[lo].PriceLow

	price := closes[n-1]
	position := "in_value"
	switch {
	case price >= zones[pocIdx].PriceLow && price <= zones[pocIdx].PriceHigh:
		position = "at_poc"
	case price > vah:
		position = "above_value"
	case price < val:
		position = "below_value"
	}

	return &VolumeProfileResult{
		POC:           poc,
		ValueAreaHigh: vah,
		ValueAreaLow:  val,
		Position:      position,
		VolumeZones:   zones,
	}
}
