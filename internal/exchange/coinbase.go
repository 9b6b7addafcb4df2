package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

const coinbaseWSURL = "wss://ws-feed.exchange.coinbase.com"

// Coinbase streams the ticker channel. The feed has no kline channel, so
// this venue contributes to price aggregation only.
type Coinbase struct {
	Instruments []string

	OnParseError func()
}

func (c *Coinbase) Name() string { return "coinbase" }

type coinbaseSubscribe struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

type coinbaseTicker struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Open24h   string `json:"open_24h"`
	High24h   string `json:"high_24h"`
	Low24h    string `json:"low_24h"`
	Volume24h string `json:"volume_24h"`
}

// Run dials the feed, subscribes to tickers for every mapped instrument and
// pumps normalized events until the socket drops or ctx is cancelled.
func (c *Coinbase) Run(ctx context.Context, events chan<- Event) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, coinbaseWSURL, nil)
	if err != nil {
		return fmt.Errorf("coinbase: dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	var products []string
	for _, inst := range c.Instruments {
		if sym, ok := coinbaseSymbols[inst]; ok {
			products = append(products, sym)
		}
	}
	sub := coinbaseSubscribe{Type: "subscribe", ProductIDs: products, Channels: []string{"ticker"}}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("coinbase: subscribe: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(70 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(70 * time.Second))
		return nil
	})

	log.Printf("[coinbase] connected, products=%v", products)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("coinbase: read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(70 * time.Second))

		ev, err := parseCoinbaseTicker(msg)
		if err != nil {
			log.Printf("[coinbase] dropping ticker message: %v", err)
			if c.OnParseError != nil {
				c.OnParseError()
			}
			continue
		}
		if ev != nil {
			emit(ctx, events, Event{Exchange: "coinbase", Ticker: ev})
		}
	}
}

func parseCoinbaseTicker(msg []byte) (*TickerEvent, error) {
	var t coinbaseTicker
	if err := json.Unmarshal(msg, &t); err != nil {
		return nil, err
	}
	if t.Type != "ticker" {
		return nil, nil // subscription acks, heartbeats
	}
	inst, ok := coinbaseInstruments[t.ProductID]
	if !ok {
		return nil, nil
	}

	price, err := model.ParseFloat("price", t.Price)
	if err != nil {
		return nil, err
	}
	open, err := model.ParseFloat("open_24h", t.Open24h)
	if err != nil {
		return nil, err
	}
	high, err := model.ParseFloat("high_24h", t.High24h)
	if err != nil {
		return nil, err
	}
	low, err := model.ParseFloat("low_24h", t.Low24h)
	if err != nil {
		return nil, err
	}
	volume, err := model.ParseFloat("volume_24h", t.Volume24h)
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
