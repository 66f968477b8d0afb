package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SeedFile string // optional YAML catalog loaded at startup

	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RateLimit       float64       // requests per second accepted by the API
	RateBurst       int

	OTelEndpoint string // OTLP/HTTP collector host:port, empty = tracing disabled
	ServiceName  string
}

func Load() *Config {
	return &Config{
		LogLevel:  getenv("LIBRA_LOG_LEVEL", "warn"),
		PrettyLog: mustBool("LIBRA_PRETTY_LOG", true),

		SeedFile: getenv("LIBRA_SEED_FILE", ""),

		ListenPort:      getenv("LIBRA_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LIBRA_SHUTDOWN_TIMEOUT", 5*time.Second),
		RateLimit:       getenvFloat("LIBRA_RATE_LIMIT", 20),
		RateBurst:       getenvInt("LIBRA_RATE_BURST", 40),

		OTelEndpoint: getenv("LIBRA_OTEL_ENDPOINT", ""),
		ServiceName:  getenv("LIBRA_SERVICE_NAME", "libracatalog"),
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
