package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

const binanceWSBase = "wss://stream.binance.com:9443/stream"

// Binance streams miniTicker and kline events over one combined-stream
// socket for every configured instrument and timeframe.
type Binance struct {
	Instruments []string
	Timeframes  []string

	// OnParseError is an optional metrics hook, called once per dropped
	// malformed message.
	OnParseError func()
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) streamURL() string {
	var streams []string
	for _, inst := range b.Instruments {
		sym, ok := binanceSymbols[inst]
		if !ok {
			continue
		}
		streams = append(streams, sym+"@miniTicker")
		for _, tf := range b.Timeframes {
			streams = append(streams, sym+"@kline_"+tf)
		}
	}
	return binanceWSBase + "?streams=" + strings.Join(streams, "/")
}

// Run dials the combined stream and pumps normalized events until the
// socket drops or ctx is cancelled.
func (b *Binance) Run(ctx context.Context, events chan<- Event) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.streamURL(), nil)
	if err != nil {
		return fmt.Errorf("binance: dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(70 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(70 * time.Second))
		return nil
	})

	log.Printf("[binance] connected, %d instruments, tfs=%v", len(b.Instruments), b.Timeframes)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("binance: read: %w", err)
		}
		b.handleFrame(ctx, msg, events)
	}
}

type binanceFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type binanceMiniTicker struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
	Open   string `json:"o"`
	High   string `json:"h"`
	Low    string `json:"l"`
	Volume string `json:"v"`
}

type binanceKline struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	K      struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Interval  string `json:"i"`
		Open      string `json:"o"`
		Close     string `json:"c"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Volume    string `json:"v"`
		Closed    bool   `json:"x"`
	} `json:"k"`
}

func (b *Binance) handleFrame(ctx context.Context, msg []byte, events chan<- Event) {
	var frame binanceFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		b.dropped("frame", err)
		return
	}

	switch {
	case strings.Contains(frame.Stream, "@miniTicker"):
		ev, err := parseBinanceTicker(frame.Data)
		if err != nil {
			b.dropped("miniTicker", err)
			return
		}
		if ev != nil {
			emit(ctx, events, Event{Exchange: "binance", Ticker: ev})
		}
	case strings.Contains(frame.Stream, "@kline"):
		ev, err := parseBinanceKline(frame.Data)
		if err != nil {
			b.dropped("kline", err)
			return
		}
		if ev != nil {
			emit(ctx, events, Event{Exchange: "binance", Kline: ev})
		}
	}
}

func parseBinanceTicker(data []byte) (*TickerEvent, error) {
	var t binanceMiniTicker
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	inst, ok := binanceInstruments[strings.ToLower(t.Symbol)]
	if !ok {
		return nil, nil // unmapped symbol, not an error
	}

	price, err := model.ParseFloat("close", t.Close)
	if err != nil {
		return nil, err
	}
	open, err := model.ParseFloat("open", t.Open)
	if err != nil {
		return nil, err
	}
	high, err := model.ParseFloat("high", t.High)
	if err != nil {
		return nil, err
	}
	low, err := model.ParseFloat("low", t.Low)
	if err != nil {
		return nil, err
	}
	volume, err := model.ParseFloat("volume", t.Volume)
	if err != nil {
		return nil, err
	}

	change := 0.0
	if open > 0 {
		change = (price - open) / open * 100
	}
	return &TickerEvent{
		Instrument: inst,
		Price:      price,
		High24h:    high,
		Low24h:     low,
		Volume24h:  volume,
		Change24h:  change,
	}, nil
}

func parseBinanceKline(data []byte) (*KlineEvent, error) {
	var k binanceKline
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, err
	}
	inst, ok := binanceInstruments[strings.ToLower(k.Symbol)]
	if !ok {
		return nil, nil
	}

	open, err := model.ParseFloat("open", k.K.Open)
	if err != nil {
		return nil, err
	}
	high, err := model.ParseFloat("high", k.K.High)
	if err != nil {
		return nil, err
	}
	low, err := model.ParseFloat("low", k.K.Low)
	if err != nil {
		return nil, err
	}
	close_, err := model.ParseFloat("close", k.K.Close)
	if err != nil {
		return nil, err
	}
	volume, err := model.ParseFloat("volume", k.K.Volume)
	if err != nil {
		return nil, err
	}

	return &KlineEvent{
		Key: model.Key{Instrument: inst, Timeframe: k.K.Interval},
		Candle: model.Candle{
			OpenTime:  k.K.OpenTime,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close_,
			Volume:    volume,
			CloseTime: k.K.CloseTime,
			IsClosed:  k.K.Closed,
		},
	}, nil
}

func (b *Binance) dropped(kind string, err error) {
	log.Printf("[binance] dropping %s message: %v", kind, err)
	if b.OnParseError != nil {
		b.OnParseError()
	}
}
