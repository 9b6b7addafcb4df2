package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Bala-Nallamilli/futures-trading-framework/config"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/cache"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/engine"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/exchange"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/gateway"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/logger"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/marketdata/agg"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/metrics"
	"github.com/Bala-Nallamilli/futures-trading-framework/internal/store"
)

var processStart = time.Now()

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	slogger := logger.Init("market-engine", slog.LevelInfo)
	log.Println("[server] starting...")

	cfg := config.Load()
	instruments := cfg.ParseInstruments()
	timeframes := cfg.ParseTimeframes()
	log.Printf("[server] instruments=%v timeframes=%v", instruments, timeframes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Metrics ----
	prom := metrics.New()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)
	metricsSrv.Start()

	// ---- Optional Redis cache ----
	var cacheGw *cache.Gateway
	if cfg.RedisAddr != "" {
		var err error
		cacheGw, err = cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, slogger)
		if err != nil {
			log.Printf("[server] WARNING: cache init failed: %v (continuing without cache)", err)
			cacheGw = nil
		}
	}
	defer cacheGw.Close()

	// ---- Pipeline core ----
	st := store.New()
	aggregator := agg.New()
	eng := engine.New(st, aggregator, slogger)
	eng.Cache = cacheGw
	eng.REST = exchange.NewRESTClient()
	eng.Metrics = prom
	eng.Instruments = instruments
	eng.Timeframes = timeframes

	// ---- Exchange feeds ----
	var connectors []exchange.Connector
	if cfg.EnableBinance {
		connectors = append(connectors, &exchange.Binance{
			Instruments:  instruments,
			Timeframes:   timeframes,
			OnParseError: func() { prom.ParseErrors.WithLabelValues("binance").Inc() },
		})
	}
	if cfg.EnableCoinbase {
		connectors = append(connectors, &exchange.Coinbase{
			Instruments:  instruments,
			OnParseError: func() { prom.ParseErrors.WithLabelValues("coinbase").Inc() },
		})
	}
	if cfg.EnableKraken {
		connectors = append(connectors, &exchange.Kraken{
			Instruments:  instruments,
			Timeframes:   timeframes,
			OnParseError: func() { prom.ParseErrors.WithLabelValues("kraken").Inc() },
		})
	}
	if len(connectors) == 0 {
		log.Fatalf("[server] no exchange feeds enabled")
	}

	for _, c := range connectors {
		name := c.Name()
		eng.Supervisors = append(eng.Supervisors, &exchange.Supervisor{
			Connector:   c,
			BaseDelay:   cfg.ReconnectBaseDelay,
			MaxAttempts: cfg.ReconnectMaxAttempts,
			Log:         slogger,
			OnReconnect: func() { prom.Reconnects.WithLabelValues(name).Inc() },
		})
	}

	// ---- Gateway ----
	hub := gateway.NewHub(eng, prom)
	eng.Hub = hub

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, hub, processStart)
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	// ---- Backfill, then go live ----
	eng.Backfill(ctx)

	events := make(chan exchange.Event, 4096)
	var wg sync.WaitGroup
	for _, sup := range eng.Supervisors {
		sup := sup
		wg.Add(1)
		go func() {
			defer wg.Done()
			sup.Run(ctx, events)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		eng.Run(ctx, events)
	}()

	go func() {
		log.Printf("[server] listening on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[server] http server: %v", err)
		}
	}()

	<-sigCh
	log.Println("[server] shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpSrv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)

	wg.Wait()
	log.Println("[server] stopped")
}
