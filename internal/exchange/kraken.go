package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

const krakenWSURL = "wss://ws.kraken.com"

// Kraken streams ticker and ohlc subscriptions. Kraken frames data messages
// as JSON arrays [channelID, payload, channelName, pair].
type Kraken struct {
	Instruments []string
	Timeframes  []string

	OnParseError func()
}

func (k *Kraken) Name() string { return "kraken" }

type krakenSubscribe struct {
	Event        string             `json:"event"`
	Pair         []string           `json:"pair"`
	Subscription krakenSubscription `json:"subscription"`
}

type krakenSubscription struct {
	Name     string `json:"name"`
	Interval int    `json:"interval,omitempty"`
}

// Run dials, subscribes to ticker plus one ohlc channel per timeframe, and
// pumps normalized events until the socket drops or ctx is cancelled.
func (k *Kraken) Run(ctx context.Context, events chan<- Event) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, krakenWSURL, nil)
	if err != nil {
		return fmt.Errorf("kraken: dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var pairs []string
	for _, inst := range k.Instruments {
		if sym, ok := krakenSymbols[inst]; ok {
			pairs = append(pairs, sym)
		}
	}

	subs := []krakenSubscribe{
		{Event: "subscribe", Pair: pairs, Subscription: krakenSubscription{Name: "ticker"}},
	}
	for _, tf := range k.Timeframes {
		if interval, ok := krakenIntervals[tf]; ok {
			subs = append(subs, krakenSubscribe{
				Event:        "subscribe",
				Pair:         pairs,
				Subscription: krakenSubscription{Name: "ohlc", Interval: interval},
			})
		}
	}
	for _, sub := range subs {
		if err := conn.WriteJSON(sub); err != nil {
			return fmt.Errorf("kraken: subscribe %s: %w", sub.Subscription.Name, err)
		}
	}

	conn.SetReadDeadline(time.Now().Add(70 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(70 * time.Second))
		return nil
	})

	log.Printf("[kraken] connected, pairs=%v", pairs)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("kraken: read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(70 * time.Second))
		k.handleFrame(ctx, msg, events)
	}
}

func (k *Kraken) handleFrame(ctx context.Context, msg []byte, events chan<- Event) {
	// Object frames are system events (heartbeat, subscriptionStatus).
	if len(msg) == 0 || msg[0] != '[' {
		return
	}

	var frame []json.RawMessage
	if err := json.Unmarshal(msg, &frame); err != nil {
		k.dropped("frame", err)
		return
	}
	if len(frame) < 4 {
		return
	}

	var channel, pair string
	if err := json.Unmarshal(frame[len(frame)-2], &channel); err != nil {
		k.dropped("channel", err)
		return
	}
	if err := json.Unmarshal(frame[len(frame)-1], &pair); err != nil {
		k.dropped("pair", err)
		return
	}
	inst, ok := krakenInstruments[pair]
	if !ok {
		return
	}

	switch {
	case channel == "ticker":
		ev, err := parseKrakenTicker(frame[1], inst)
		if err != nil {
			k.dropped("ticker", err)
			return
		}
		emit(ctx, events, Event{Exchange: "kraken", Ticker: ev})
	case strings.HasPrefix(channel, "ohlc"):
		ev, err := parseKrakenOHLC(frame[1], channel, inst)
		if err != nil {
			k.dropped("ohlc", err)
			return
		}
		if ev != nil {
			emit(ctx, events, Event{Exchange: "kraken", Kline: ev})
		}
	}
}

// krakenTickerPayload carries string-pair arrays: c=[price, lotVolume],
// h/l/v=[today, last24h], o=[today, last24h].
type krakenTickerPayload struct {
	C []string `json:"c"`
	H []string `json:"h"`
	L []string `json:"l"`
	V []string `json:"v"`
	O []string `json:"o"`
}

func parseKrakenTicker(data []byte, instrument string) (*TickerEvent, error) {
	var t krakenTickerPayload
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if len(t.C) < 1 || len(t.H) < 2 || len(t.L) < 2 || len(t.V) < 2 || len(t.O) < 2 {
		return nil, fmt.Errorf("kraken ticker: short payload")
	}

	price, err := model.ParseFloat("c", t.C[0])
	if err != nil {
		return nil, err
	}
	high, err := model.ParseFloat("h", t.H[1])
	if err != nil {
		return nil, err
	}
	low, err := model.ParseFloat("l", t.L[1])
	if err != nil {
		return nil, err
	}
	volume, err := model.ParseFloat("v", t.V[1])
	if err != nil {
		return nil, err
	}
	open, err := model.ParseFloat("o", t.O[1])
	if err != nil {
		return nil, err
	}

	change := 0.0
	if open > 0 {
		change = (price - open) / open * 100
	}
	return &TickerEvent{
		Instrument: instrument,
		Price:      price,
		High24h:    high,
		Low24h:     low,
		Volume24h:  volume,
		Change24h:  change,
	}, nil
}

// parseKrakenOHLC handles [time, etime, open, high, low, close, vwap,
// volume, count]. The bucket's open time is etime minus the interval.
func parseKrakenOHLC(data []byte, channel, instrument string) (*KlineEvent, error) {
	intervalMin, err := strconv.Atoi(strings.TrimPrefix(channel, "ohlc-"))
	if err != nil {
		return nil, fmt.Errorf("kraken ohlc: channel %q: %w", channel, err)
	}
	tf := krakenTimeframe(intervalMin)
	if tf == "" {
		return nil, nil
	}

	var row []json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	if len(row) < 8 {
		return nil, fmt.Errorf("kraken ohlc: short row")
	}

	field := func(name string, raw json.RawMessage) (float64, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &model.ParseError{Field: name, Value: string(raw), Err: err}
		}
		return model.ParseFloat(name, s)
	}

	etime, err := field("etime", row[1])
	if err != nil {
		return nil, err
	}
	open, err := field("open", row[2])
	if err != nil {
		return nil, err
	}
	high, err := field("high", row[3])
	if err != nil {
		return nil, err
	}
	low, err := field("low", row[4])
	if err != nil {
		return nil, err
	}
	close_, err := field("close", row[5])
	if err != nil {
		return nil, err
	}
	volume, err := field("volume", row[7])
	if err != nil {
		return nil, err
	}

	closeTimeMs := int64(etime * 1000)
	openTimeMs := closeTimeMs - int64(intervalMin)*60_000

	return &KlineEvent{
		Key: model.Key{Instrument: instrument, Timeframe: tf},
		Candle: model.Candle{
			OpenTime:  openTimeMs,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close_,
			Volume:    volume,
			CloseTime: closeTimeMs,
			IsClosed:  false, // finalized implicitly when the next bucket starts
		},
	}, nil
}

func (k *Kraken) dropped(kind string, err error) {
	log.Printf("[kraken] dropping %s message: %v", kind, err)
	if k.OnParseError != nil {
		k.OnParseError()
	}
}
