package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	// Provider
	Provider       string
	YahooAPIBase   string
	FakePrice      float64
	RequestTimeout time.Duration
	// History
	HistoryMonths int
	// Refresher
	RefreshInterval time.Duration
	// Redis (result cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	HistoryTTL    time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func floatDef(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:             getEnv("ENV", "local"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		Provider:        getEnv("PROVIDER", "fake"),
		YahooAPIBase:    getEnv("YAHOO_API_BASE", "https://query1.finance.yahoo.com"),
		FakePrice:       floatDef(getEnv("FAKE_PRICE", "1300"), 1300),
		RequestTimeout:  time.Duration(atoiDef(getEnv("REQUEST_TIMEOUT_MS", "10000"), 10000)) * time.Millisecond,
		HistoryMonths:   atoiDef(getEnv("HISTORY_MONTHS", "12"), 12),
		RefreshInterval: time.Duration(atoiDef(getEnv("REFRESH_INTERVAL_MS", "3600000"), 3600000)) * time.Millisecond,
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         atoiDef(getEnv("REDIS_DB", "0"), 0),
		HistoryTTL:      time.Duration(atoiDef(getEnv("HISTORY_CACHE_TTL_MS", "3600000"), 3600000)) * time.Millisecond,
	}
}
