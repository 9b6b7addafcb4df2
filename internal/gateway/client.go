package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// Client represents a single WebSocket peer. With no subscribe message
// received it gets everything; after one, only matching series.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	hub  *Hub

	closeOnce sync.Once

	filterMu    sync.RWMutex
	instruments map[string]bool
	timeframes  map[string]bool
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
		hub:  hub,
	}
}

// shutdown signals the write pump to exit. The send channel is never
// closed, so a history reply that loses the race with a disconnect is
// dropped instead of panicking.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) enqueue(msg []byte) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
	}
}

func (c *Client) wantsInstrument(instrument string) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return len(c.instruments) == 0 || c.instruments[instrument]
}

func (c *Client) wantsSeries(instrument, timeframe string) bool {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	if len(c.instruments) > 0 && !c.instruments[instrument] {
		return false
	}
	if len(c.timeframes) > 0 && !c.timeframes[timeframe] {
		return false
	}
	return true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			// Write coalescing: batch queued messages into one frame
			// with newline separators.
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
		log.Println("[gateway] ws client disconnected")
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg clientMessage
		if json.Unmarshal(raw, &msg) != nil {
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.handleSubscribe(msg)
		case "get_history":
			go c.handleHistory(msg)
		}
	}
}

func (c *Client) handleSubscribe(msg clientMessage) {
	instruments := make(map[string]bool, len(msg.Instruments))
	for _, inst := range msg.Instruments {
		instruments[inst] = true
	}
	timeframes := make(map[string]bool, len(msg.Timeframes))
	for _, tf := range msg.Timeframes {
		timeframes[tf] = true
	}

	c.filterMu.Lock()
	c.instruments = instruments
	c.timeframes = timeframes
	c.filterMu.Unlock()

	log.Printf("[gateway] ws subscribe: instruments=%v timeframes=%v",
		msg.Instruments, msg.Timeframes)

	// Reply immediately with current state for every series the new
	// filter covers, so the client is not blind until the next live event.
	for _, key := range c.hub.source.Keys() {
		if c.wantsSeries(key.Instrument, key.Timeframe) {
			c.enqueue(c.hub.envelope(MsgCandleUpdate, c.hub.seriesUpdate(key)))
		}
	}
}

func (c *Client) handleHistory(msg clientMessage) {
	if msg.Instrument == "" || msg.Timeframe == "" {
		c.sendError(msg.ReqID, "instrument and timeframe are required")
		return
	}
	key := model.Key{Instrument: msg.Instrument, Timeframe: msg.Timeframe}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	candles, err := c.hub.source.History(ctx, key, msg.Limit)
	if err != nil {
		c.sendError(msg.ReqID, "history fetch failed: "+err.Error())
		return
	}
	c.enqueue(c.hub.envelope(MsgHistory, HistoryResponse{
		ReqID:      msg.ReqID,
		Instrument: msg.Instrument,
		Timeframe:  msg.Timeframe,
		Candles:    candles,
	}))
}

func (c *Client) sendError(reqID, message string) {
	c.enqueue(c.hub.envelope(MsgError, ErrorResponse{ReqID: reqID, Message: message}))
}
