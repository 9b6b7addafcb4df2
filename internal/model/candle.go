package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Candle represents one OHLCV bar for a single (instrument, timeframe).
// Times are Unix milliseconds. Prices are parsed exactly once at the
// ingestion boundary; everything downstream works on float64.
type Candle struct {
	OpenTime  int64   `json:"openTime"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"closeTime"`
	IsClosed  bool    `json:"isClosed"`
}

// Body returns the absolute open→close distance.
func (c *Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range returns high−low.
func (c *Candle) Range() float64 {
	return c.High - c.Low
}

// UpperWick returns the distance from the body top to the high.
func (c *Candle) UpperWick() float64 {
	if c.Close >= c.Open {
		return c.High - c.Close
	}
	return c.High - c.Open
}

// LowerWick returns the distance from the body bottom to the low.
func (c *Candle) LowerWick() float64 {
	if c.Close >= c.Open {
		return c.Open - c.Low
	}
	return c.Close - c.Low
}

// Bullish reports whether the candle closed above its open.
func (c *Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports whether the candle closed below its open.
func (c *Candle) Bearish() bool { return c.Close < c.Open }

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Key identifies one candle series: (instrument, timeframe).
type Key struct {
	Instrument string `json:"instrument"`
	Timeframe  string `json:"timeframe"`
}

// String returns "instrument:timeframe", used for map keys and log lines.
func (k Key) String() string {
	return k.Instrument + ":" + k.Timeframe
}

// ParseError reports an unparseable numeric field in an exchange message.
// Events carrying one are dropped at the ingestion boundary, never stored.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFloat parses a decimal string from an exchange wire message.
// Returns a *ParseError naming the field on failure.
func ParseFloat(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ParseError{Field: field, Value: value, Err: err}
	}
	return f, nil
}
