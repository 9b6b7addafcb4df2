// Package engine runs the analysis pipeline: exchange events in, stored
// candles and refreshed analysis out to the gateway.
package engine

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/cache"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/decision"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/exchange"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/gateway"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/indicator"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/marketdata/agg"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/metrics"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/pattern"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/store"
)

// primaryKlineExchange is the canonical candle source. Other exchanges'
// klines are ignored while its feed is alive so one series never mixes
// two exchanges' prices.
const primaryKlineExchange = "binance"

// minPatternCandles is the floor below which pattern detection is skipped.
const minPatternCandles = 3

// Engine consumes exchange events, maintains the candle store and ticker
// aggregator, recomputes analysis on every kline, and pushes updates to
// the hub. Events are processed on a single goroutine, so analysis for a
// series is never computed concurrently with its own update.
type Engine struct {
	Store       *store.Store
	Agg         *agg.Aggregator
	Cache       *cache.Gateway
	REST        *exchange.RESTClient
	Supervisors []*exchange.Supervisor
	Metrics     *metrics.Metrics
	Log         *slog.Logger

	Instruments []string
	Timeframes  []string

	// Hub is set after construction; the gateway needs the engine as its
	// data source first.
	Hub *gateway.Hub

	mu        sync.RWMutex
	lastEvent map[string]time.Time
}

func New(st *store.Store, aggregator *agg.Aggregator, logger *slog.Logger) *Engine {
	return &Engine{
		Store:     st,
		Agg:       aggregator,
		Log:       logger,
		lastEvent: make(map[string]time.Time),
	}
}

// Run processes events until ctx is cancelled or the channel closes.
func (e *Engine) Run(ctx context.Context, events <-chan exchange.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.handle(ctx, ev)
		}
	}
}

func (e *Engine) handle(ctx context.Context, ev exchange.Event) {
	e.mu.Lock()
	e.lastEvent[ev.Exchange] = time.Now()
	e.mu.Unlock()

	switch {
	case ev.Ticker != nil:
		e.handleTicker(ev.Exchange, ev.Ticker)
	case ev.Kline != nil:
		e.handleKline(ctx, ev.Exchange, ev.Kline)
	}
}

func (e *Engine) handleTicker(exch string, t *exchange.TickerEvent) {
	if e.Metrics != nil {
		e.Metrics.EventsIngested.WithLabelValues(exch, "ticker").Inc()
	}
	e.Agg.UpdateStats(exch, t.Instrument, t.Price, t.High24h, t.Low24h, t.Volume24h, t.Change24h)
	if e.Hub != nil {
		e.Hub.BroadcastTicker(e.Agg.Aggregate(t.Instrument))
	}
}

func (e *Engine) handleKline(ctx context.Context, exch string, k *exchange.KlineEvent) {
	if exch != primaryKlineExchange && e.primaryAlive() {
		return
	}
	if e.Metrics != nil {
		e.Metrics.EventsIngested.WithLabelValues(exch, "kline").Inc()
	}

	n := e.Store.Upsert(k.Key, k.Candle)
	e.refreshAnalysis(k.Key, n)

	if k.Candle.IsClosed && e.Cache != nil {
		e.Cache.SetCandles(ctx, k.Key, e.Store.Candles(k.Key))
	}
}

// refreshAnalysis recomputes patterns, indicators, and the decision for
// one series and broadcasts the result.
func (e *Engine) refreshAnalysis(key model.Key, n int) {
	start := time.Now()

	candles := e.Store.Candles(key)
	analysis := store.Analysis{Patterns: []model.Pattern{}}
	analysis.Indicators = indicator.CalculateAll(candles)

	// Patterns and the decision share the same history floor; a
	// sub-threshold series carries neither.
	if n >= minPatternCandles {
		analysis.Patterns = pattern.Detect(candles, len(candles)-1)
		d := decision.Evaluate(analysis.Patterns, candles[len(candles)-1], candles)
		analysis.Decision = &d
	}
	e.Store.SetAnalysis(key, analysis)

	if e.Metrics != nil {
		e.Metrics.AnalysisDur.Observe(time.Since(start).Seconds())
		e.Metrics.AnalysisRuns.Inc()
	}
	if e.Hub != nil {
		tail := candles
		if len(tail) > gateway.SnapshotCandles {
			tail = tail[len(tail)-gateway.SnapshotCandles:]
		}
		e.Hub.BroadcastCandleUpdate(gateway.SeriesUpdate{
			Instrument: key.Instrument,
			Timeframe:  key.Timeframe,
			Candles:    tail,
			Patterns:   analysis.Patterns,
			Indicators: analysis.Indicators,
			Decision:   analysis.Decision,
		})
	}
}

func (e *Engine) primaryAlive() bool {
	for _, s := range e.Supervisors {
		if s.Connector.Name() == primaryKlineExchange {
			st := s.Status()
			return !st.GaveUp
		}
	}
	return false
}

// Backfill seeds every configured series before live traffic starts:
// cache hit loads instantly (with an async REST refresh), miss goes
// straight to REST. A series that cannot be seeded starts empty and
// fills from the live stream.
func (e *Engine) Backfill(ctx context.Context) {
	for _, inst := range e.Instruments {
		for _, tf := range e.Timeframes {
			key := model.Key{Instrument: inst, Timeframe: tf}
			e.backfillSeries(ctx, key)
		}
	}
}

func (e *Engine) backfillSeries(ctx context.Context, key model.Key) {
	if candles, ok := e.Cache.GetCandles(ctx, key); ok && len(candles) > 0 {
		if e.Metrics != nil {
			e.Metrics.CacheHits.Inc()
		}
		n := e.Store.ReplaceAll(key, candles)
		e.refreshAnalysis(key, n)
		log.Printf("[engine] backfill %s: %d candles from cache", key, n)

		// Cached windows can be stale; refresh from REST in the background.
		go e.restBackfill(ctx, key, false)
		return
	}
	if e.Metrics != nil {
		e.Metrics.CacheMisses.Inc()
	}
	e.restBackfill(ctx, key, true)
}

func (e *Engine) restBackfill(ctx context.Context, key model.Key, logMiss bool) {
	if e.REST == nil {
		return
	}
	candles, err := e.REST.FetchKlines(ctx, key, store.Capacity)
	if err != nil {
		e.Log.Warn("backfill fetch failed", "key", key.String(), "error", err)
		return
	}
	// Merge candle by candle: live upserts that raced the fetch must
	// survive, the fetched window is never authoritative.
	n := e.Store.Len(key)
	for _, c := range candles {
		n = e.Store.Upsert(key, c)
	}
	e.refreshAnalysis(key, n)
	if e.Cache != nil {
		e.Cache.SetCandles(ctx, key, e.Store.Candles(key))
	}
	if logMiss {
		log.Printf("[engine] backfill %s: %d candles from REST", key, n)
	}
}
