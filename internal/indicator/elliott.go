package indicator

// ElliottStrength is the half-width of the swing-detection window: a bar is
// a pivot when it is the extreme of the strength bars on each side.
const ElliottStrength = 5

// WavePoint is one labelled pivot in a detected wave structure.
type WavePoint struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
	Label string  `json:"label"`
}

// ElliottResult is a best-effort Elliott wave read of the series.
type ElliottResult struct {
	Pattern    string      `json:"pattern"` // impulse, corrective, indeterminate
	Wave       string      `json:"wave"`
	Points     []WavePoint `json:"points"`
	Projection float64     `json:"projection"`
	Confidence float64     `json:"confidence"`
}

type pivot struct {
	index int
	price float64
	high  bool
}

// ElliottWave detects swing pivots with a ±ElliottStrength window and
// matches the trailing pivots against a 5-wave impulse template (wave 2 must
// not fully retrace wave 1, wave 3 must exceed wave 1's extreme, wave 4 must
// not re-enter wave 1's territory) or a 3-wave ABC corrective template.
// When no pivot sequence qualifies it returns a low-confidence
// indeterminate result rather than an error.
func ElliottWave(highs, lows []float64) *ElliottResult {
	pivots := findPivots(highs, lows, ElliottStrength)

	if r := matchImpulse(pivots); r != nil {
		return r
	}
	if r := matchCorrective(pivots); r != nil {
		return r
	}
	return &ElliottResult{Pattern: "indeterminate", Confidence: 0.2}
}

// findPivots returns alternating swing highs/lows. Adjacent same-side pivots
// collapse to the more extreme one.
func findPivots(highs, lows []float64, strength int) []pivot {
	n := len(highs)
	var out []pivot
	for i := strength; i < n-strength; i++ {
		isHigh, isLow := true, true
		for j := i - strength; j <= i+strength; j++ {
			if j == i {
				continue
			}
			if highs[j] >= highs[i] {
				isHigh = false
			}
			if lows[j] <= lows[i] {
				isLow = false
			}
		}
		var p pivot
		switch {
		case isHigh:
			p = pivot{index: i, price: highs[i], high: true}
		case isLow:
			p = pivot{index: i, price: lows[i], high: false}
		default:
			continue
		}
		if len(out) > 0 && out[len(out)-1].high == p.high {
			last := &out[len(out)-1]
			if (p.high && p.price > last.price) || (!p.high && p.price < last.price) {
				*last = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

// matchImpulse checks the last 6 pivots against a 5-wave impulse.
func matchImpulse(pivots []pivot) *ElliottResult {
	if len(pivots) < 6 {
		return nil
	}
	p := pivots[len(pivots)-6:]

	// Rising impulse: low, high, low, high, low, high.
	if !p[0].high && p[1].high && !p[2].high && p[3].high && !p[4].high && p[5].high {
		if p[2].price > p[0].price && // wave 2 holds above wave 1 start
			p[3].price > p[1].price && // wave 3 beyond wave 1 extreme
			p[4].price > p[1].price { // wave 4 outside wave 1 territory
			return &ElliottResult{
				Pattern:    "impulse",
				Wave:       "wave_5",
				Points:     labelPoints(p, []string{"0", "1", "2", "3", "4", "5"}),
				Projection: p[4].price + (p[1].price - p[0].price),
				Confidence: 0.7,
			}
		}
	}

	// Falling impulse: high, low, high, low, high, low.
	if p[0].high && !p[1].high && p[2].high && !p[3].high && p[4].high && !p[5].high {
		if p[2].price < p[0].price &&
			p[3].price < p[1].price &&
			p[4].price < p[1].price {
			return &ElliottResult{
				Pattern:    "impulse",
				Wave:       "wave_5",
				Points:     labelPoints(p, []string{"0", "1", "2", "3", "4", "5"}),
				Projection: p[4].price - (p[0].price - p[1].price),
				Confidence: 0.7,
			}
		}
	}
	return nil
}

// matchCorrective checks the last 4 pivots against an ABC zigzag.
func matchCorrective(pivots []pivot) *ElliottResult {
	if len(pivots) < 4 {
		return nil
	}
	p := pivots[len(pivots)-4:]

	// Downward correction from a top: high, low(A), high(B), low(C).
	if p[0].high && !p[1].high && p[2].high && !p[3].high {
		if p[2].price < p[0].price && p[3].price < p[1].price {
			return &ElliottResult{
				Pattern:    "corrective",
				Wave:       "wave_C",
				Points:     labelPoints(p, []string{"0", "A", "B", "C"}),
				Projection: p[2].price - (p[0].price - p[1].price),
				Confidence: 0.6,
			}
		}
	}

	// Upward correction from a bottom: low, high(A), low(B), high(C).
	if !p[0].high && p[1].high && !p[2].high && p[3].high {
		if p[2].price > p[0].price && p[3].price > p[1].price {
			return &ElliottResult{
				Pattern:    "corrective",
				Wave:       "wave_C",
				Points:     labelPoints(p, []string{"0", "A", "B", "C"}),
				Projection: p[2].price + (p[1].price - p[0].price),
				Confidence: 0.6,
			}
		}
	}
	return nil
}

func labelPoints(pivots []pivot, labels []string) []WavePoint {
	out := make([]WavePoint, len(pivots))
	for i, p := range pivots {
		out[i] = WavePoint{Index: p.index, Price: p.price, Label: labels[i]}
	}
	return out
}
