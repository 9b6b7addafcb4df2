package pattern

import (
	"math"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// detectDoji classifies dojis: body under 10% of range, sub-typed by wick
// asymmetry (one wick more than 2.5× the other).
func detectDoji(candles []model.Candle, idx int) *model.Pattern {
	c := &candles[idx]
	rng := c.Range()
	if rng <= 0 || c.Body() >= rng*0.10 {
		return nil
	}
	upper, lower := c.UpperWick(), c.LowerWick()

	switch {
	case upper > lower*2.5:
		return &model.Pattern{
			Name:        "Gravestone Doji",
			Type:        model.PatternBearish,
			Strength:    model.StrengthMedium,
			Description: "Long upper shadow with close near the low, buyers rejected at the top",
		}
	case lower > upper*2.5:
		return &model.Pattern{
			Name:        "Dragonfly Doji",
			Type:        model.PatternBullish,
			Strength:    model.StrengthMedium,
			Description: "Long lower shadow with close near the high, sellers rejected at the bottom",
		}
	default:
		return &model.Pattern{
			Name:        "Doji",
			Type:        model.PatternNeutral,
			Strength:    model.StrengthWeak,
			Description: "Open and close nearly equal, market indecision",
		}
	}
}

// detectHammerFamily finds hammers and hanging men: long lower wick
// (>2× body), short upper wick (<0.5× body), real body over 10% of range.
// Direction comes from the close relative to the trailing 3-candle average.
func detectHammerFamily(candles []model.Candle, idx int) *model.Pattern {
	c := &candles[idx]
	rng := c.Range()
	body := c.Body()
	if rng <= 0 || body <= rng*0.10 {
		return nil
	}
	if c.LowerWick() <= body*2 || c.UpperWick() >= body*0.5 {
		return nil
	}

	if c.Close < avgClose(candles, idx, 3) {
		return &model.Pattern{
			Name:        "Hammer",
			Type:        model.PatternBullish,
			Strength:    model.StrengthMedium,
			Description: "Hammer after a decline, potential bullish reversal",
		}
	}
	return &model.Pattern{
		Name:        "Hanging Man",
		Type:        model.PatternBearish,
		Strength:    model.StrengthMedium,
		Description: "Hanging man after an advance, potential bearish reversal",
	}
}

// detectShootingStarFamily mirrors the hammer family on the upper wick.
func detectShootingStarFamily(candles []model.Candle, idx int) *model.Pattern {
	c := &candles[idx]
	rng := c.Range()
	body := c.Body()
	if rng <= 0 || body <= rng*0.10 {
		return nil
	}
	if c.UpperWick() <= body*2 || c.LowerWick() >= body*0.5 {
		return nil
	}

	if c.Close < avgClose(candles, idx, 3) {
		return &model.Pattern{
			Name:        "Inverted Hammer",
			Type:        model.PatternBullish,
			Strength:    model.StrengthWeak,
			Description: "Inverted hammer after a decline, possible bullish reversal",
		}
	}
	return &model.Pattern{
		Name:        "Shooting Star",
		Type:        model.PatternBearish,
		Strength:    model.StrengthMedium,
		Description: "Shooting star after an advance, buyers failed to hold the high",
	}
}

// detectMarubozu: both wicks under 5% of range, body over 90% of range.
func detectMarubozu(candles []model.Candle, idx int) *model.Pattern {
	c := &candles[idx]
	rng := c.Range()
	if rng <= 0 {
		return nil
	}
	if c.UpperWick() >= rng*0.05 || c.LowerWick() >= rng*0.05 || c.Body() <= rng*0.90 {
		return nil
	}

	if c.Bullish() {
		return &model.Pattern{
			Name:        "Bullish Marubozu",
			Type:        model.PatternBullish,
			Strength:    model.StrengthStrong,
			Description: "Full-bodied bullish candle, buyers in control from open to close",
		}
	}
	return &model.Pattern{
		Name:        "Bearish Marubozu",
		Type:        model.PatternBearish,
		Strength:    model.StrengthStrong,
		Description: "Full-bodied bearish candle, sellers in control from open to close",
	}
}

// detectEngulfing: body over 1.3× the previous body with open and close
// straddling the prior candle's body in the engulfing direction.
func detectEngulfing(candles []model.Candle, idx int) *model.Pattern {
	if idx < 1 {
		return nil
	}
	c, prev := &candles[idx], &candles[idx-1]
	if c.Body() <= prev.Body()*1.3 {
		return nil
	}
	prevTop := math.Max(prev.Open, prev.Close)
	prevBot := math.Min(prev.Open, prev.Close)

	if c.Bullish() && prev.Bearish() && c.Open <= prevBot && c.Close >= prevTop {
		return &model.Pattern{
			Name:        "Bullish Engulfing",
			Type:        model.PatternBullish,
			Strength:    model.StrengthStrong,
			Description: "Bullish candle engulfing the prior bearish body",
		}
	}
	if c.Bearish() && prev.Bullish() && c.Open >= prevTop && c.Close <= prevBot {
		return &model.Pattern{
			Name:        "Bearish Engulfing",
			Type:        model.PatternBearish,
			Strength:    model.StrengthStrong,
			Description: "Bearish candle engulfing the prior bullish body",
		}
	}
	return nil
}

// detectStar finds morning/evening stars: a strong candle against the final
// direction, a small middle body (<30% of the first), and a third candle
// with body over 50% of the first confirming the reversal.
func detectStar(candles []model.Candle, idx int) *model.Pattern {
	if idx < 2 {
		return nil
	}
	first, mid, last := &candles[idx-2], &candles[idx-1], &candles[idx]
	fb := first.Body()
	if fb <= 0 || mid.Body() >= fb*0.30 || last.Body() <= fb*0.50 {
		return nil
	}
	firstMid := (first.Open + first.Close) / 2

	if first.Bearish() && last.Bullish() && last.Close > firstMid {
		return &model.Pattern{
			Name:        "Morning Star",
			Type:        model.PatternBullish,
			Strength:    model.StrengthStrong,
			Description: "Morning star, three-candle bullish reversal",
		}
	}
	if first.Bullish() && last.Bearish() && last.Close < firstMid {
		return &model.Pattern{
			Name:        "Evening Star",
			Type:        model.PatternBearish,
			Strength:    model.StrengthStrong,
			Description: "Evening star, three-candle bearish reversal",
		}
	}
	return nil
}

// detectVolumeSpike compares the current volume against the trailing-5
// average: above 2× confirms, below 0.5× warns.
func detectVolumeSpike(candles []model.Candle, idx int) *model.Pattern {
	if idx < 5 {
		return nil
	}
	avg := 0.0
	for i := idx - 5; i < idx; i++ {
		avg += candles[i].Volume
	}
	avg /= 5
	if avg <= 0 {
		return nil
	}
	v := candles[idx].Volume

	if v > avg*2 {
		return &model.Pattern{
			Name:        "High Volume",
			Type:        model.PatternConfirmation,
			Strength:    model.StrengthStrong,
			Description: "Volume spike above twice the recent average, move is supported",
		}
	}
	if v < avg*0.5 {
		return &model.Pattern{
			Name:        "Low Volume",
			Type:        model.PatternWarning,
			Strength:    model.StrengthWeak,
			Description: "Volume under half the recent average, move lacks participation",
		}
	}
	return nil
}

// detectTweezer: matching extremes (within 10% of range) on two
// opposite-direction candles.
func detectTweezer(candles []model.Candle, idx int) *model.Pattern {
	if idx < 1 {
		return nil
	}
	c, prev := &candles[idx], &candles[idx-1]
	rng := c.Range()
	if rng <= 0 {
		return nil
	}

	if math.Abs(c.High-prev.High) < rng*0.10 && prev.Bullish() && c.Bearish() {
		return &model.Pattern{
			Name:        "Tweezer Top",
			Type:        model.PatternBearish,
			Strength:    model.StrengthMedium,
			Description: "Matching highs rejected twice, bearish reversal signal",
		}
	}
	if math.Abs(c.Low-prev.Low) < rng*0.10 && prev.Bearish() && c.Bullish() {
		return &model.Pattern{
			Name:        "Tweezer Bottom",
			Type:        model.PatternBullish,
			Strength:    model.StrengthMedium,
			Description: "Matching lows defended twice, bullish reversal signal",
		}
	}
	return nil
}

// detectPiercing: open beyond the prior close with a close crossing the
// prior body midpoint, in the reversal direction.
func detectPiercing(candles []model.Candle, idx int) *model.Pattern {
	if idx < 1 {
		return nil
	}
	c, prev := &candles[idx], &candles[idx-1]
	prevMid := (prev.Open + prev.Close) / 2

	if prev.Bearish() && c.Bullish() && c.Open < prev.Close && c.Close > prevMid {
		return &model.Pattern{
			Name:        "Piercing Line",
			Type:        model.PatternBullish,
			Strength:    model.StrengthMedium,
			Description: "Gap down reclaimed past the prior body midpoint",
		}
	}
	if prev.Bullish() && c.Bearish() && c.Open > prev.Close && c.Close < prevMid {
		return &model.Pattern{
			Name:        "Dark Cloud Cover",
			Type:        model.PatternBearish,
			Strength:    model.StrengthMedium,
			Description: "Gap up sold off past the prior body midpoint",
		}
	}
	return nil
}

// detectThreeSoldiers: three consecutive same-direction candles, each
// closing beyond the previous close.
func detectThreeSoldiers(candles []model.Candle, idx int) *model.Pattern {
	if idx < 2 {
		return nil
	}
	a, b, c := &candles[idx-2], &candles[idx-1], &candles[idx]

	if a.Bullish() && b.Bullish() && c.Bullish() && b.Close > a.Close && c.Close > b.Close {
		return &model.Pattern{
			Name:        "Three White Soldiers",
			Type:        model.PatternBullish,
			Strength:    model.StrengthStrong,
			Description: "Three advancing bullish candles, sustained buying pressure",
		}
	}
	if a.Bearish() && b.Bearish() && c.Bearish() && b.Close < a.Close && c.Close < b.Close {
		return &model.Pattern{
			Name:        "Three Black Crows",
			Type:        model.PatternBearish,
			Strength:    model.StrengthStrong,
			Description: "Three declining bearish candles, sustained selling pressure",
		}
	}
	return nil
}
