package metrics

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the analysis engine.
type Metrics struct {
	EventsIngested *prometheus.CounterVec // labels: exchange, kind=ticker|kline
	ParseErrors    *prometheus.CounterVec // labels: exchange
	Reconnects     *prometheus.CounterVec // labels: exchange

	AnalysisDur  prometheus.Histogram
	AnalysisRuns prometheus.Counter

	ConnectedClients prometheus.Gauge
	Broadcasts       *prometheus.CounterVec // labels: type
	ClientsPruned    prometheus.Counter

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_events_ingested_total",
			Help: "Exchange events accepted into the pipeline",
		}, []string{"exchange", "kind"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_parse_errors_total",
			Help: "Exchange messages dropped due to parse failures",
		}, []string{"exchange"}),
		Reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_ws_reconnects_total",
			Help: "Exchange feed reconnection attempts",
		}, []string{"exchange"}),

		AnalysisDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_analysis_duration_seconds",
			Help:    "Full pattern+indicator+decision pass latency per candle",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		AnalysisRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_analysis_runs_total",
			Help: "Analysis passes completed",
		}),

		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "engine_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_broadcasts_total",
			Help: "Messages fanned out to WebSocket clients (by message type)",
		}, []string{"type"}),
		ClientsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_ws_clients_pruned_total",
			Help: "Clients dropped after a failed send",
		}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_cache_hits_total",
			Help: "Candle windows served from the cache on startup",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_cache_misses_total",
			Help: "Candle windows that fell through to REST backfill",
		}),
	}

	prometheus.MustRegister(
		m.EventsIngested,
		m.ParseErrors,
		m.Reconnects,
		m.AnalysisDur,
		m.AnalysisRuns,
		m.ConnectedClients,
		m.Broadcasts,
		m.ClientsPruned,
		m.CacheHits,
		m.CacheMisses,
	)

	return m
}

// Server runs an HTTP server exposing /metrics.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates the metrics server.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
