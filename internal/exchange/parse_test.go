package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

func TestParseBinanceTicker(t *testing.T) {
	data := []byte(`{"e":"24hrMiniTicker","s":"BTCUSDT","c":"50500.00","o":"50000.00","h":"51000.00","l":"49500.00","v":"1234.5"}`)
	ev, err := parseBinanceTicker(data)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "BTCUSDT", ev.Instrument)
	assert.Equal(t, 50500.0, ev.Price)
	assert.Equal(t, 51000.0, ev.High24h)
	assert.Equal(t, 49500.0, ev.Low24h)
	assert.Equal(t, 1234.5, ev.Volume24h)
	assert.InDelta(t, 1.0, ev.Change24h, 1e-9)
}

func TestParseBinanceTickerUnmappedSymbol(t *testing.T) {
	data := []byte(`{"e":"24hrMiniTicker","s":"DOGEUSDT","c":"0.1","o":"0.1","h":"0.1","l":"0.1","v":"1"}`)
	ev, err := parseBinanceTicker(data)
	assert.NoError(t, err)
	assert.Nil(t, ev)
}

func TestParseBinanceTickerBadNumber(t *testing.T) {
	data := []byte(`{"e":"24hrMiniTicker","s":"BTCUSDT","c":"not-a-price","o":"1","h":"1","l":"1","v":"1"}`)
	_, err := parseBinanceTicker(data)
	assert.Error(t, err)
}

func TestParseBinanceKline(t *testing.T) {
	data := []byte(`{"e":"kline","s":"ETHUSDT","k":{"t":1700000000000,"T":1700000059999,"i":"1m","o":"3000.0","c":"3010.5","h":"3012.0","l":"2995.0","v":"250.75","x":true}}`)
	ev, err := parseBinanceKline(data)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, model.Key{Instrument: "ETHUSDT", Timeframe: "1m"}, ev.Key)
	assert.Equal(t, int64(1700000000000), ev.Candle.OpenTime)
	assert.Equal(t, int64(1700000059999), ev.Candle.CloseTime)
	assert.Equal(t, 3010.5, ev.Candle.Close)
	assert.True(t, ev.Candle.IsClosed)
}

func TestBinanceHandleFrameCountsParseErrors(t *testing.T) {
	dropped := 0
	b := &Binance{OnParseError: func() { dropped++ }}
	events := make(chan Event, 1)

	bad := []byte(`{"stream":"ethusdt@kline_1m","data":{"s":"ETHUSDT","k":{"i":"1m","o":"oops"}}}`)
	b.handleFrame(context.Background(), bad, events)
	assert.Equal(t, 1, dropped)
	assert.Empty(t, events)

	good := []byte(`{"stream":"ethusdt@kline_1m","data":{"s":"ETHUSDT","k":{"t":1,"T":2,"i":"1m","o":"1","c":"1","h":"1","l":"1","v":"1","x":false}}}`)
	b.handleFrame(context.Background(), good, events)
	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, "binance", ev.Exchange)
	require.NotNil(t, ev.Kline)
	assert.Nil(t, ev.Ticker)
}

func TestParseCoinbaseTicker(t *testing.T) {
	data := []byte(`{"type":"ticker","product_id":"BTC-USD","price":"50250.0","open_24h":"50000.0","high_24h":"50500.0","low_24h":"49000.0","volume_24h":"987.6"}`)
	ev, err := parseCoinbaseTicker(data)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "BTCUSDT", ev.Instrument)
	assert.Equal(t, 50250.0, ev.Price)
	assert.InDelta(t, 0.5, ev.Change24h, 1e-9)
}

func TestParseCoinbaseIgnoresSystemMessages(t *testing.T) {
	for _, msg := range []string{
		`{"type":"subscriptions","channels":[]}`,
		`{"type":"heartbeat"}`,
		`{"type":"ticker","product_id":"DOGE-USD","price":"0.1","open_24h":"0.1","high_24h":"0.1","low_24h":"0.1","volume_24h":"1"}`,
	} {
		ev, err := parseCoinbaseTicker([]byte(msg))
		assert.NoError(t, err, msg)
		assert.Nil(t, ev, msg)
	}
}

func TestKrakenHandleFrameTicker(t *testing.T) {
	k := &Kraken{}
	events := make(chan Event, 1)
	frame := []byte(`[42,{"c":["50100.0","0.01"],"h":["50200.0","50300.0"],"l":["49000.0","48900.0"],"v":["10.0","25.0"],"o":["49800.0","50000.0"]},"ticker","XBT/USD"]`)
	k.handleFrame(context.Background(), frame, events)

	require.Len(t, events, 1)
	ev := <-events
	assert.Equal(t, "kraken", ev.Exchange)
	require.NotNil(t, ev.Ticker)
	assert.Equal(t, "BTCUSDT", ev.Ticker.Instrument)
	assert.Equal(t, 50100.0, ev.Ticker.Price)
	assert.Equal(t, 50300.0, ev.Ticker.High24h)
	assert.Equal(t, 48900.0, ev.Ticker.Low24h)
	assert.Equal(t, 25.0, ev.Ticker.Volume24h)
	assert.InDelta(t, 0.2, ev.Ticker.Change24h, 1e-9)
}

func TestKrakenHandleFrameOHLC(t *testing.T) {
	k := &Kraken{}
	events := make(chan Event, 1)
	frame := []byte(`[43,["1700000000.1","1700000060.0","3000.0","3012.0","2995.0","3010.5","3004.2","250.75","17"],"ohlc-1","ETH/USD"]`)
	k.handleFrame(context.Background(), frame, events)

	require.Len(t, events, 1)
	ev := <-events
	require.NotNil(t, ev.Kline)
	assert.Equal(t, model.Key{Instrument: "ETHUSDT", Timeframe: "1m"}, ev.Kline.Key)
	assert.Equal(t, int64(1700000000000), ev.Kline.Candle.OpenTime)
	assert.Equal(t, int64(1700000060000), ev.Kline.Candle.CloseTime)
	assert.Equal(t, 3010.5, ev.Kline.Candle.Close)
	assert.Equal(t, 250.75, ev.Kline.Candle.Volume)
	assert.False(t, ev.Kline.Candle.IsClosed)
}

func TestKrakenHandleFrameSkipsSystemAndUnmapped(t *testing.T) {
	dropped := 0
	k := &Kraken{OnParseError: func() { dropped++ }}
	events := make(chan Event, 1)

	k.handleFrame(context.Background(), []byte(`{"event":"heartbeat"}`), events)
	k.handleFrame(context.Background(), []byte(`[42,{"c":["1","1"]},"ticker","DOGE/USD"]`), events)
	assert.Empty(t, events)
	assert.Equal(t, 0, dropped)

	// Malformed ticker payload counts as a drop.
	k.handleFrame(context.Background(), []byte(`[42,{"c":["1"]},"ticker","XBT/USD"]`), events)
	assert.Empty(t, events)
	assert.Equal(t, 1, dropped)
}

func TestParseKrakenOHLCUnknownInterval(t *testing.T) {
	ev, err := parseKrakenOHLC([]byte(`["1","2","1","1","1","1","1","1","1"]`), "ohlc-30", "BTCUSDT")
	assert.NoError(t, err)
	assert.Nil(t, ev)
}

func TestFetchKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "btcusdt", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		rows := `[
			[1700000000000,"100.0","101.0","99.0","100.5","12.5",1700000059999,"0",1,"0","0","0"],
			[1700000060000,"100.5","102.0","100.0","101.5","8.25",1700000119999,"0",1,"0","0","0"]
		]`
		w.Write([]byte(rows))
	}))
	defer srv.Close()

	client := NewRESTClient()
	client.BaseURL = srv.URL
	candles, err := client.FetchKlines(context.Background(), model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}, 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1700000000000), candles[0].OpenTime)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.True(t, candles[0].IsClosed)
	assert.True(t, candles[1].IsClosed)
}

func TestFetchKlinesRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewRESTClient()
	client.BaseURL = srv.URL
	_, err := client.FetchKlines(context.Background(), model.Key{Instrument: "BTCUSDT", Timeframe: "1m"}, 5)
	assert.Error(t, err)
}

func TestParseKlineRow(t *testing.T) {
	var row []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[1700000000000,"100.0","101.0","99.0","100.5","12.5",1700000059999]`), &row))
	c, err := parseKlineRow(row)
	require.NoError(t, err)
	assert.Equal(t, 101.0, c.High)
	assert.Equal(t, int64(1700000059999), c.CloseTime)

	_, err = parseKlineRow(row[:3])
	assert.Error(t, err)

	var bad []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[1700000000000,"x","101.0","99.0","100.5","12.5",1700000059999]`), &bad))
	_, err = parseKlineRow(bad)
	assert.Error(t, err)
}
