package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	NatsURL       string
	NatsToken     string
	DatabaseURL   string
	LogLevel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	RequestDelay  time.Duration
}

func Load() Config {
	return Config{
		Port:          envInt("VEREDITO_PORT", 8760),
		NatsURL:       envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:     envStr("NATS_TOKEN", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL: envStr("OPENAI_BASE_URL", ""),
		Model:         envStr("VEREDITO_MODEL", "gpt-4o-mini"),
		RequestDelay:  envDur("REQUEST_DELAY", 5*time.Second),
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

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
