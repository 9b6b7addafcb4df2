package model

import "encoding/json"

// TickerState is the aggregated live quote for one instrument, blended from
// every exchange currently reporting it.
type TickerState struct {
	Instrument string             `json:"instrument"`
	Price      float64            `json:"price"`
	Exchanges  map[string]float64 `json:"exchanges"`
	Change24h  float64            `json:"change24h"`
	High24h    float64            `json:"high24h"`
	Low24h     float64            `json:"low24h"`
	Volume24h  float64            `json:"volume24h"`
	Sources    []string           `json:"sources"`
}

// JSON returns the JSON-encoded ticker state.
func (t *TickerState) JSON() []byte {
	b, _ := json.Marshal(t)
	return b
}
