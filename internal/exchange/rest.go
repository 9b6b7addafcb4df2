package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

const binanceRESTURL = "https://api.binance.com/api/v3/klines"

// RESTClient fetches historical klines from Binance for cold-start
// backfill. Live data then overwrites the tail through the normal path.
type RESTClient struct {
	HTTP    *http.Client
	BaseURL string
}

func NewRESTClient() *RESTClient {
	return &RESTClient{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: binanceRESTURL,
	}
}

// FetchKlines returns up to limit historical candles for one series,
// oldest first. All candles but possibly the last are closed.
func (r *RESTClient) FetchKlines(ctx context.Context, key model.Key, limit int) ([]model.Candle, error) {
	symbol, ok := binanceSymbols[key.Instrument]
	if !ok {
		return nil, fmt.Errorf("rest: no binance symbol for %s", key.Instrument)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", key.Timeframe)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("rest: build request: %w", err)
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest: fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rest: fetch %s: status %d: %s", key, resp.StatusCode, body)
	}

	// Binance returns rows of mixed-type arrays:
	// [openTime, open, high, low, close, volume, closeTime, ...].
	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("rest: decode %s: %w", key, err)
	}

	candles := make([]model.Candle, 0, len(rows))
	now := time.Now().UnixMilli()
	for _, row := range rows {
		c, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("rest: %s: %w", key, err)
		}
		c.IsClosed = c.CloseTime <= now
		candles = append(candles, c)
	}
	return candles, nil
}

func parseKlineRow(row []json.RawMessage) (model.Candle, error) {
	if len(row) < 7 {
		return model.Candle{}, fmt.Errorf("kline row too short (%d fields)", len(row))
	}

	str := func(name string, raw json.RawMessage) (float64, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &model.ParseError{Field: name, Value: string(raw), Err: err}
		}
		return model.ParseFloat(name, s)
	}
	num := func(name string, raw json.RawMessage) (int64, error) {
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, &model.ParseError{Field: name, Value: string(raw), Err: err}
		}
		return n, nil
	}

	openTime, err := num("openTime", row[0])
	if err != nil {
		return model.Candle{}, err
	}
	open, err := str("open", row[1])
	if err != nil {
		return model.Candle{}, err
	}
	high, err := str("high", row[2])
	if err != nil {
		return model.Candle{}, err
	}
	low, err := str("low", row[3])
	if err != nil {
		return model.Candle{}, err
	}
	close_, err := str("close", row[4])
	if err != nil {
		return model.Candle{}, err
	}
	volume, err := str("volume", row[5])
	if err != nil {
		return model.Candle{}, err
	}
	closeTime, err := num("closeTime", row[6])
	if err != nil {
		return model.Candle{}, err
	}

	return model.Candle{
		OpenTime:  openTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close_,
		Volume:    volume,
		CloseTime: closeTime,
	}, nil
}
