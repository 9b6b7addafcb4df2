package engine

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/exchange"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/marketdata/agg"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/store"
)

func newTestEngine() *Engine {
	return New(store.New(), agg.New(), slog.Default())
}

func klineEvent(exch string, openTime int64, close float64, closed bool) exchange.Event {
	return exchange.Event{
		Exchange: exch,
		Kline: &exchange.KlineEvent{
			Key: model.Key{Instrument: "BTCUSDT", Timeframe: "1m"},
			Candle: model.Candle{
				OpenTime:  openTime,
				Open:      close - 1,
				High:      close + 1,
				Low:       close - 2,
				Close:     close,
				Volume:    10,
				CloseTime: openTime + 59_999,
				IsClosed:  closed,
			},
		},
	}
}

func TestEngineStoresKlinesAndComputesAnalysis(t *testing.T) {
	e := newTestEngine()
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}

	for i := 0; i < 5; i++ {
		e.handle(context.Background(), klineEvent("binance", int64(i)*60_000, 100+float64(i), true))
	}

	assert.Equal(t, 5, e.Store.Len(key))
	analysis, ok := e.Store.Analysis(key)
	require.True(t, ok)
	assert.NotNil(t, analysis.Patterns)
	require.NotNil(t, analysis.Decision)
	// 5 candles is below the indicator floor.
	assert.Nil(t, analysis.Indicators)
}

func TestEngineSkipsDecisionBelowHistoryFloor(t *testing.T) {
	e := newTestEngine()
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}

	e.handle(context.Background(), klineEvent("binance", 0, 100, true))
	e.handle(context.Background(), klineEvent("binance", 60_000, 101, true))

	analysis, ok := e.Store.Analysis(key)
	require.True(t, ok)
	assert.Empty(t, analysis.Patterns)
	assert.Nil(t, analysis.Decision)

	// The third candle crosses the floor.
	e.handle(context.Background(), klineEvent("binance", 120_000, 102, true))
	analysis, _ = e.Store.Analysis(key)
	assert.NotNil(t, analysis.Decision)
}

func TestEngineUpsertsByOpenTime(t *testing.T) {
	e := newTestEngine()
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}

	// The same bucket streams repeatedly while it is forming.
	e.handle(context.Background(), klineEvent("binance", 0, 100, false))
	e.handle(context.Background(), klineEvent("binance", 0, 101, false))
	e.handle(context.Background(), klineEvent("binance", 0, 102, true))

	require.Equal(t, 1, e.Store.Len(key))
	candles := e.Store.Candles(key)
	assert.Equal(t, 102.0, candles[0].Close)
	assert.True(t, candles[0].IsClosed)
}

func TestEngineIgnoresSecondaryKlinesWhilePrimaryAlive(t *testing.T) {
	e := newTestEngine()
	e.Supervisors = []*exchange.Supervisor{
		{Connector: &exchange.Binance{}},
	}
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}

	e.handle(context.Background(), klineEvent("kraken", 0, 100, true))
	assert.Equal(t, 0, e.Store.Len(key))

	e.handle(context.Background(), klineEvent("binance", 0, 100, true))
	assert.Equal(t, 1, e.Store.Len(key))
}

func TestEngineAcceptsSecondaryKlinesWithoutPrimary(t *testing.T) {
	// No binance supervisor configured at all: the fallback venue feeds
	// the store.
	e := newTestEngine()
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}

	e.handle(context.Background(), klineEvent("kraken", 0, 100, true))
	assert.Equal(t, 1, e.Store.Len(key))
}

func TestEngineAggregatesTickers(t *testing.T) {
	e := newTestEngine()

	e.handle(context.Background(), exchange.Event{
		Exchange: "binance",
		Ticker:   &exchange.TickerEvent{Instrument: "BTCUSDT", Price: 50000, High24h: 51000, Low24h: 49000, Volume24h: 10},
	})
	e.handle(context.Background(), exchange.Event{
		Exchange: "coinbase",
		Ticker:   &exchange.TickerEvent{Instrument: "BTCUSDT", Price: 50100, High24h: 50900, Low24h: 49100, Volume24h: 5},
	})

	tickers := e.Tickers()
	require.Len(t, tickers, 1)
	assert.Equal(t, 50050.0, tickers[0].Price)
	assert.ElementsMatch(t, []string{"binance", "coinbase"}, tickers[0].Sources)
}

func TestEngineRunStopsOnCancelAndClose(t *testing.T) {
	e := newTestEngine()
	events := make(chan exchange.Event)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx, events)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop on cancel")
	}

	done = make(chan struct{})
	go func() {
		e.Run(context.Background(), events)
		close(done)
	}()
	close(events)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop on channel close")
	}
}

func TestHistoryServesStoredTail(t *testing.T) {
	e := newTestEngine()
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}
	for i := 0; i < 20; i++ {
		e.Store.Upsert(key, model.Candle{OpenTime: int64(i) * 60_000, Close: float64(i)})
	}

	candles, err := e.History(context.Background(), key, 10)
	require.NoError(t, err)
	require.Len(t, candles, 10)
	assert.Equal(t, 10.0, candles[0].Close)

	// No REST client configured: a deeper request degrades to what is
	// stored instead of failing.
	candles, err = e.History(context.Background(), key, 50)
	require.NoError(t, err)
	assert.Len(t, candles, 20)
}

// klineRESTServer serves a fixed Binance-format klines response.
func klineRESTServer(t *testing.T, rows string) *exchange.RESTClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, rows)
	}))
	t.Cleanup(srv.Close)
	return &exchange.RESTClient{HTTP: srv.Client(), BaseURL: srv.URL}
}

func TestRestBackfillMergesWithLiveCandles(t *testing.T) {
	e := newTestEngine()
	e.REST = klineRESTServer(t, `[
		[0,"100","101","99","100.5","10",59999],
		[60000,"101","102","100","101.5","10",119999]
	]`)
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}

	// A live candle streamed in before the refresh landed.
	e.Store.Upsert(key, model.Candle{OpenTime: 120_000, Close: 999, IsClosed: false})

	e.restBackfill(context.Background(), key, false)

	candles := e.Store.Candles(key)
	require.Len(t, candles, 3)
	// The refresh must not clobber the newer live candle.
	assert.Equal(t, int64(120_000), candles[2].OpenTime)
	assert.Equal(t, 999.0, candles[2].Close)
	assert.Equal(t, 100.5, candles[0].Close)
}

func TestHistorySeedsStoreFromREST(t *testing.T) {
	e := newTestEngine()
	e.REST = klineRESTServer(t, `[
		[0,"100","101","99","100.5","10",59999],
		[60000,"101","102","100","101.5","10",119999]
	]`)
	key := model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}

	candles, err := e.History(context.Background(), key, 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	// The fetched window now backs the store, so the next request is
	// answered without REST.
	assert.Equal(t, 2, e.Store.Len(key))
	e.REST = nil
	again, err := e.History(context.Background(), key, 2)
	require.NoError(t, err)
	assert.Len(t, again, 2)
}

func TestKeysAreSorted(t *testing.T) {
	e := newTestEngine()
	e.Store.Upsert(model.Key{Instrument: "ETHUSDT", Timeframe: "5m"}, model.Candle{OpenTime: 1})
	e.Store.Upsert(model.Key{Instrument: "BTCUSDT", Timeframe: "5m"}, model.Candle{OpenTime: 1})
	e.Store.Upsert(model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}, model.Candle{OpenTime: 1})

	assert.Equal(t, []model.Key{
		{Instrument: "BTCUSDT", Timeframe: "1m"},
		{Instrument: "BTCUSDT", Timeframe: "5m"},
		{Instrument: "ETHUSDT", Timeframe: "5m"},
	}, e.Keys())
}
