package gateway

import (
	"encoding/json"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/indicator"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// Server→client message types.
const (
	MsgInit         = "init"
	MsgTicker       = "ticker"
	MsgCandleUpdate = "candle_update"
	MsgHistory      = "history"
	MsgError        = "error"
)

// Envelope wraps every server→client message.
type Envelope struct {
	Type string          `json:"type"`
	Seq  int64           `json:"seq"`
	Data json.RawMessage `json:"data"`
}

// SeriesUpdate is the payload of a candle_update and one element of the
// init snapshot. Candles carry the tail of the stored window.
type SeriesUpdate struct {
	Instrument string              `json:"instrument"`
	Timeframe  string              `json:"timeframe"`
	Candles    []model.Candle      `json:"candles"`
	Patterns   []model.Pattern     `json:"patterns"`
	Indicators *indicator.Snapshot `json:"indicators,omitempty"`
	Decision   *model.Decision     `json:"decision,omitempty"`
}

// InitSnapshot is sent once, immediately after a client connects.
type InitSnapshot struct {
	Tickers []model.TickerState `json:"tickers"`
	Series  []SeriesUpdate      `json:"series"`
}

// HistoryResponse answers a get_history request.
type HistoryResponse struct {
	ReqID      string         `json:"reqId,omitempty"`
	Instrument string         `json:"instrument"`
	Timeframe  string         `json:"timeframe"`
	Candles    []model.Candle `json:"candles"`
}

// ErrorResponse reports a rejected client request.
type ErrorResponse struct {
	ReqID   string `json:"reqId,omitempty"`
	Message string `json:"message"`
}

// clientMessage is the union of all client→server messages.
type clientMessage struct {
	Type        string   `json:"type"`
	Instruments []string `json:"instruments,omitempty"`
	Timeframes  []string `json:"timeframes,omitempty"`
	Instrument  string   `json:"instrument,omitempty"`
	Timeframe   string   `json:"timeframe,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	ReqID       string   `json:"reqId,omitempty"`
}
