// Package gateway fans live market analysis out to WebSocket clients and
// serves the REST query surface.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/exchange"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/metrics"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/store"
)

// DataSource is the pipeline surface the hub reads from. It answers the
// init snapshot, history requests, and REST queries.
type DataSource interface {
	Keys() []model.Key
	Window(key model.Key) []model.Candle
	Analysis(key model.Key) (store.Analysis, bool)
	Tickers() []model.TickerState
	History(ctx context.Context, key model.Key, limit int) ([]model.Candle, error)
	FeedStatus() []exchange.SupervisorStatus
}

// SnapshotCandles bounds the candle tail carried by init snapshots and
// candle_update messages. Full windows go through get_history.
const SnapshotCandles = 50

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub manages WebSocket clients and broadcast fan-out.
type Hub struct {
	source  DataSource
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]bool
	seq     int64
}

// NewHub creates a hub over the given pipeline.
func NewHub(source DataSource, m *metrics.Metrics) *Hub {
	return &Hub{
		source:  source,
		metrics: m,
		clients: make(map[*Client]bool),
	}
}

// HandleWS upgrades the connection, registers the client, and sends the
// init snapshot before any live traffic reaches it.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade failed: %v", err)
		return
	}

	client := newClient(h, conn)
	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.ConnectedClients.Set(float64(count))
	}
	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.writePump()
	go client.readPump()
	client.enqueue(h.envelope(MsgInit, h.initSnapshot()))
}

// RemoveClient unregisters a client and signals its write pump to exit.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	c.shutdown()
	if h.metrics != nil {
		h.metrics.ConnectedClients.Set(float64(count))
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastTicker sends an aggregated ticker to all clients subscribed to
// its instrument.
func (h *Hub) BroadcastTicker(ts model.TickerState) {
	msg := h.envelope(MsgTicker, ts)
	h.fanOut(MsgTicker, msg, func(c *Client) bool {
		return c.wantsInstrument(ts.Instrument)
	})
}

// BroadcastCandleUpdate sends a refreshed series analysis to all clients
// subscribed to its (instrument, timeframe).
func (h *Hub) BroadcastCandleUpdate(update SeriesUpdate) {
	msg := h.envelope(MsgCandleUpdate, update)
	h.fanOut(MsgCandleUpdate, msg, func(c *Client) bool {
		return c.wantsSeries(update.Instrument, update.Timeframe)
	})
}

func (h *Hub) fanOut(msgType string, msg []byte, match func(*Client) bool) {
	h.mu.RLock()
	var stale []*Client
	n := 0
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.send <- msg:
			n++
		default:
			// Slow consumer: its queue is full, cut it loose.
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		log.Printf("[gateway] pruning slow ws client")
		h.RemoveClient(client)
		client.conn.Close()
		if h.metrics != nil {
			h.metrics.ClientsPruned.Inc()
		}
	}
	if h.metrics != nil && n > 0 {
		h.metrics.Broadcasts.WithLabelValues(msgType).Add(float64(n))
	}
}

func (h *Hub) initSnapshot() InitSnapshot {
	snap := InitSnapshot{
		Tickers: h.source.Tickers(),
		Series:  []SeriesUpdate{},
	}
	for _, key := range h.source.Keys() {
		snap.Series = append(snap.Series, h.seriesUpdate(key))
	}
	return snap
}

func (h *Hub) seriesUpdate(key model.Key) SeriesUpdate {
	candles := h.source.Window(key)
	if len(candles) > SnapshotCandles {
		candles = candles[len(candles)-SnapshotCandles:]
	}
	update := SeriesUpdate{
		Instrument: key.Instrument,
		Timeframe:  key.Timeframe,
		Candles:    candles,
		Patterns:   []model.Pattern{},
	}
	if analysis, ok := h.source.Analysis(key); ok {
		if analysis.Patterns != nil {
			update.Patterns = analysis.Patterns
		}
		update.Indicators = analysis.Indicators
		update.Decision = analysis.Decision
	}
	return update
}

func (h *Hub) envelope(msgType string, payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[gateway] marshal %s payload: %v", msgType, err)
		data = []byte("null")
	}
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	msg, _ := json.Marshal(Envelope{Type: msgType, Seq: seq, Data: data})
	return msg
}
