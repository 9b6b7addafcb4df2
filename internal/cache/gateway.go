// Package cache is the optional Redis layer in front of REST backfill.
// The service is fully functional without it: a nil gateway or an open
// breaker turns every operation into a no-op miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/Bala-Nallamilli/futures-trading-framework/internal/model"
)

const (
	breakerFailures = 5
	breakerCooldown = 10 * time.Second
)

// Config configures the Redis connection.
type Config struct {
	Addr     string // e.g. "localhost:6379"; empty disables the cache
	Password string
	DB       int
	TTL      time.Duration
}

// Gateway caches candle windows keyed by series. All methods are safe on
// a nil receiver so callers never branch on whether caching is enabled.
type Gateway struct {
	client  *goredis.Client
	ttl     time.Duration
	breaker *Breaker
	log     *slog.Logger
}

// New connects to Redis and verifies the connection with a ping. An
// unreachable Redis is an error at startup; the caller decides whether
// to run without the cache.
func New(cfg Config, logger *slog.Logger) (*Gateway, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", cfg.Addr, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	g := &Gateway{
		client:  client,
		ttl:     ttl,
		breaker: NewBreaker(breakerFailures, breakerCooldown),
		log:     logger,
	}
	g.breaker.OnStateChange = func(from, to BreakerState) {
		logger.Warn("cache breaker state change", "from", from.String(), "to", to.String())
	}
	logger.Info("cache connected", "addr", cfg.Addr, "ttl", ttl)
	return g, nil
}

func candleKey(key model.Key) string {
	return "candles:" + key.String()
}

// GetCandles returns the cached window for a series, or (nil, false) on
// miss, disabled cache, or any Redis failure.
func (g *Gateway) GetCandles(ctx context.Context, key model.Key) ([]model.Candle, bool) {
	if g == nil {
		return nil, false
	}
	var raw string
	err := g.breaker.Do(func() error {
		var err error
		raw, err = g.client.Get(ctx, candleKey(key)).Result()
		if err == goredis.Nil {
			raw = ""
			return nil
		}
		return err
	})
	if err != nil || raw == "" {
		if err != nil && err != ErrBreakerOpen {
			g.log.Warn("cache get failed", "key", key.String(), "error", err)
		}
		return nil, false
	}

	var candles []model.Candle
	if err := json.Unmarshal([]byte(raw), &candles); err != nil {
		g.log.Warn("cache entry corrupt, ignoring", "key", key.String(), "error", err)
		return nil, false
	}
	return candles, true
}

// SetCandles stores the window for a series with the configured TTL.
// Failures are logged and swallowed; the cache is best effort.
func (g *Gateway) SetCandles(ctx context.Context, key model.Key, candles []model.Candle) {
	if g == nil {
		return
	}
	data, err := json.Marshal(candles)
	if err != nil {
		g.log.Warn("cache marshal failed", "key", key.String(), "error", err)
		return
	}
	err = g.breaker.Do(func() error {
		return g.client.Set(ctx, candleKey(key), data, g.ttl).Err()
	})
	if err != nil && err != ErrBreakerOpen {
		g.log.Warn("cache set failed", "key", key.String(), "error", err)
	}
}

// Healthy reports whether the breaker is currently letting calls through.
func (g *Gateway) Healthy() bool {
	return g != nil && g.breaker.State() != BreakerOpen
}

// Close releases the Redis connection.
func (g *Gateway) Close() error {
	if g == nil {
		return nil
	}
	return g.client.Close()
}
