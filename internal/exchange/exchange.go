// Package exchange maintains streaming connections to the upstream crypto
// exchanges and translates their wire formats into normalized events.
// Numeric fields are parsed exactly once here; a message with an
// unparseable field is dropped and counted, never forwarded.
package exchange

import (
	"context"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// TickerEvent is a normalized 24h ticker update from one exchange.
type TickerEvent struct {
	Instrument string
	Price      float64
	High24h    float64
	Low24h     float64
	Volume24h  float64
	Change24h  float64
}

// KlineEvent is a normalized candle update from one exchange.
type KlineEvent struct {
	Key    model.Key
	Candle model.Candle
}

// Event is one normalized message from an exchange stream. Exactly one of
// Ticker or Kline is set.
type Event struct {
	Exchange string
	Ticker   *TickerEvent
	Kline    *KlineEvent
}

// Connector is one exchange's streaming connection. Run dials, subscribes
// and pumps normalized events until the connection drops (returning the
// error) or ctx is cancelled (returning ctx.Err()). Reconnection is the
// Supervisor's job, never the connector's.
type Connector interface {
	Name() string
	Run(ctx context.Context, events chan<- Event) error
}

// emit delivers an event, honoring cancellation so a stalled consumer can
// never wedge a connector shutdown.
func emit(ctx context.Context, events chan<- Event, ev Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
