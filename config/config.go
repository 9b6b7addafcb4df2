package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// HTTP
	ListenAddr  string
	MetricsAddr string

	// Redis cache (optional; empty addr disables it)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Market data
	Instruments string // comma-separated, e.g. "BTCUSDT,ETHUSDT"
	Timeframes  string // comma-separated, e.g. "1m,5m,15m,1h"

	// Exchange feeds
	EnableBinance  bool
	EnableCoinbase bool
	EnableKraken   bool

	// Reconnect policy
	ReconnectBaseDelay   time.Duration
	ReconnectMaxAttempts int
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is applied first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	return &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Minute),

		Instruments: getEnv("INSTRUMENTS", "BTCUSDT,ETHUSDT,SOLUSDT,XRPUSDT"),
		Timeframes:  getEnv("TIMEFRAMES", "1m,5m,15m,1h"),

		EnableBinance:  getEnvBool("ENABLE_BINANCE", true),
		EnableCoinbase: getEnvBool("ENABLE_COINBASE", true),
		EnableKraken:   getEnvBool("ENABLE_KRAKEN", true),

		ReconnectBaseDelay:   getEnvDuration("RECONNECT_BASE_DELAY", 2*time.Second),
		ReconnectMaxAttempts: getEnvInt("RECONNECT_MAX_ATTEMPTS", 20),
	}
}

// ParseInstruments splits the Instruments string into a clean slice.
func (c *Config) ParseInstruments() []string {
	return splitList(c.Instruments)
}

// ParseTimeframes splits the Timeframes string into a clean slice.
func (c *Config) ParseTimeframes() []string {
	return splitList(c.Timeframes)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
