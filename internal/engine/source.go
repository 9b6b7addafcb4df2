package engine

import (
	"context"
	"sort"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/exchange"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/store"
)

// The engine is the gateway's data source.

// Keys returns all configured series, sorted for stable snapshots.
func (e *Engine) Keys() []model.Key {
	keys := e.Store.Keys()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Instrument != keys[j].Instrument {
			return keys[i].Instrument < keys[j].Instrument
		}
		return keys[i].Timeframe < keys[j].Timeframe
	})
	return keys
}

// Window returns the stored candle window for one series.
func (e *Engine) Window(key model.Key) []model.Candle {
	return e.Store.Candles(key)
}

// Analysis returns the latest analysis for one series.
func (e *Engine) Analysis(key model.Key) (store.Analysis, bool) {
	return e.Store.Analysis(key)
}

// Tickers returns the aggregated cross-exchange ticker for every
// instrument that has reported a price.
func (e *Engine) Tickers() []model.TickerState {
	instruments := e.Agg.Instruments()
	sort.Strings(instruments)
	tickers := make([]model.TickerState, 0, len(instruments))
	for _, inst := range instruments {
		tickers = append(tickers, e.Agg.Aggregate(inst))
	}
	return tickers
}

// History serves candle history: the stored window when it is deep
// enough, REST otherwise. REST failures degrade to whatever is stored.
func (e *Engine) History(ctx context.Context, key model.Key, limit int) ([]model.Candle, error) {
	if limit <= 0 || limit > store.Capacity {
		limit = store.Capacity
	}
	stored := e.Store.Candles(key)
	if len(stored) >= limit {
		return stored[len(stored)-limit:], nil
	}
	if e.REST == nil {
		return stored, nil
	}
	candles, err := e.REST.FetchKlines(ctx, key, limit)
	if err != nil {
		if len(stored) > 0 {
			return stored, nil
		}
		return nil, err
	}
	// Seed the store with the deeper window so the next request is
	// served locally.
	for _, c := range candles {
		e.Store.Upsert(key, c)
	}
	return candles, nil
}

// FeedStatus reports each exchange feed's connection state.
func (e *Engine) FeedStatus() []exchange.SupervisorStatus {
	statuses := make([]exchange.SupervisorStatus, 0, len(e.Supervisors))
	for _, s := range e.Supervisors {
		statuses = append(statuses, s.Status())
	}
	return statuses
}
