// Package agg blends per-exchange last-trade prices into one published
// ticker per instrument. Aggregation is unweighted: the mean of every
// exchange currently reporting a strictly positive price. An exchange that
// has never reported is excluded, not treated as zero.
package agg

import (
	"sync"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// exchangeOrder fixes the source ordering in published tickers so results
// are reproducible regardless of event arrival order.
var exchangeOrder = []string{"binance", "coinbase", "kraken"}

type exchangeQuote struct {
	price     float64
	high24h   float64
	low24h    float64
	volume24h float64
	change24h float64
	hasStats  bool
}

// Aggregator holds the last quote per (instrument, exchange).
type Aggregator struct {
	mu     sync.RWMutex
	quotes map[string]map[string]*exchangeQuote // instrument → exchange → quote
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{quotes: make(map[string]map[string]*exchangeQuote)}
}

func (a *Aggregator) quoteFor(instrument, exchange string) *exchangeQuote {
	byExch, ok := a.quotes[instrument]
	if !ok {
		byExch = make(map[string]*exchangeQuote, len(exchangeOrder))
		a.quotes[instrument] = byExch
	}
	q, ok := byExch[exchange]
	if !ok {
		q = &exchangeQuote{}
		byExch[exchange] = q
	}
	return q
}

// Update records the latest trade price from one exchange.
func (a *Aggregator) Update(exchange, instrument string, price float64) {
	a.mu.Lock()
	a.quoteFor(instrument, exchange).price = price
	a.mu.Unlock()
}

// UpdateStats records an exchange's 24h statistics alongside its price.
func (a *Aggregator) UpdateStats(exchange, instrument string, price, high, low, volume, change float64) {
	a.mu.Lock()
	q := a.quoteFor(instrument, exchange)
	q.price = price
	q.high24h = high
	q.low24h = low
	q.volume24h = volume
	q.change24h = change
	q.hasStats = true
	a.mu.Unlock()
}

// Aggregate returns the blended ticker for an instrument: price is the
// unweighted mean of all exchanges reporting a positive price, sources are
// their names in the fixed binance, coinbase, kraken order. With no
// positive prices the result is price=0 with an empty source list.
func (a *Aggregator) Aggregate(instrument string) model.TickerState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	state := model.TickerState{
		Instrument: instrument,
		Exchanges:  make(map[string]float64),
		Sources:    []string{},
	}

	byExch := a.quotes[instrument]
	if byExch == nil {
		return state
	}

	sum := 0.0
	statsN := 0
	for _, name := range exchangeOrder {
		q, ok := byExch[name]
		if !ok || q.price <= 0 {
			continue
		}
		state.Sources = append(state.Sources, name)
		state.Exchanges[name] = q.price
		sum += q.price

		if q.hasStats {
			statsN++
			if q.high24h > state.High24h {
				state.High24h = q.high24h
			}
			if state.Low24h == 0 || (q.low24h > 0 && q.low24h < state.Low24h) {
				state.Low24h = q.low24h
			}
			state.Volume24h += q.volume24h
			state.Change24h += q.change24h
		}
	}

	if n := len(state.Sources); n > 0 {
		state.Price = sum / float64(n)
	}
	if statsN > 0 {
		state.Change24h /= float64(statsN)
	}
	return state
}

// Instruments returns every instrument with at least one recorded quote.
func (a *Aggregator) Instruments() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.quotes))
	for k := range a.quotes {
		out = append(out, k)
	}
	return out
}
