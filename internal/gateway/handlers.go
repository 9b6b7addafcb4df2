package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(v)
}

func seriesKey(r *http.Request) (model.Key, bool) {
	instrument := r.URL.Query().Get("instrument")
	timeframe := r.URL.Query().Get("timeframe")
	if instrument == "" || timeframe == "" {
		return model.Key{}, false
	}
	return model.Key{Instrument: instrument, Timeframe: timeframe}, true
}

// RegisterRoutes registers the WebSocket endpoint and the REST query
// surface on the provided mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, processStart time.Time) {
	mux.HandleFunc("/ws", hub.HandleWS)

	// REST: stored candle window for one series
	mux.HandleFunc("/api/candles", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		key, ok := seriesKey(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "instrument and timeframe are required"})
			return
		}
		candles := hub.source.Window(key)
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(candles) {
				candles = candles[len(candles)-limit:]
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"instrument": key.Instrument,
			"timeframe":  key.Timeframe,
			"candles":    candles,
		})
	})

	// REST: latest detected patterns for one series
	mux.HandleFunc("/api/patterns", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		key, ok := seriesKey(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "instrument and timeframe are required"})
			return
		}
		patterns := []model.Pattern{}
		if analysis, found := hub.source.Analysis(key); found && analysis.Patterns != nil {
			patterns = analysis.Patterns
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"instrument": key.Instrument,
			"timeframe":  key.Timeframe,
			"patterns":   patterns,
		})
	})

	// REST: latest indicator snapshot for one series
	mux.HandleFunc("/api/indicators", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		key, ok := seriesKey(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "instrument and timeframe are required"})
			return
		}
		analysis, found := hub.source.Analysis(key)
		if !found || analysis.Indicators == nil {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "no indicator snapshot for " + key.String()})
			return
		}
		writeJSON(w, http.StatusOK, analysis.Indicators)
	})

	// REST: latest trade decision for one series
	mux.HandleFunc("/api/decisions", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		key, ok := seriesKey(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "instrument and timeframe are required"})
			return
		}
		analysis, found := hub.source.Analysis(key)
		if !found || analysis.Decision == nil {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "no decision for " + key.String()})
			return
		}
		writeJSON(w, http.StatusOK, analysis.Decision)
	})

	// REST: aggregated cross-exchange tickers
	mux.HandleFunc("/api/tickers", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		writeJSON(w, http.StatusOK, hub.source.Tickers())
	})

	// REST: health of exchange feeds plus process stats
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		feeds := hub.source.FeedStatus()
		status := "healthy"
		connected := 0
		for _, f := range feeds {
			if f.Connected {
				connected++
			}
		}
		if connected == 0 {
			status = "unhealthy"
		} else if connected < len(feeds) {
			status = "degraded"
		}
		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status":  status,
			"uptime":  time.Since(processStart).Round(time.Second).String(),
			"clients": hub.ClientCount(),
			"feeds":   feeds,
		})
	})
}
