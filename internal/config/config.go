package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             int
	LogLevel         string
	GroqAPIKey       string
	GroqModel        string
	GroqURL          string
	UpstreamTimeout  time.Duration
	DatabaseURL      string
	MigrateOnStart   bool
	NatsURL          string
	NatsToken        string
	AnalyticsTimeout time.Duration
}

func Load() Config {
	return Config{
		Port:             envInt("ALIBI_PORT", 8080),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		GroqAPIKey:       envStr("GROQ_API_KEY", ""),
		GroqModel:        envStr("GROQ_MODEL", "llama-3.1-8b-instant"),
		GroqURL:          envStr("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		UpstreamTimeout:  envDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		MigrateOnStart:   envBool("MIGRATE_ON_START", false),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		AnalyticsTimeout: envDuration("ANALYTICS_TIMEOUT", 5*time.Second),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("45s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
