package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	KVBackendSQLite = "sqlite"
	KVBackendBadger = "badger"
)

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	LogFile          string
	RemoteBaseURL    string
	RemoteTimeout    time.Duration
	RemoteRatePerSec float64
	MockLatency      time.Duration
	PageSize         int
	UnblurDuration   time.Duration
	KVBackend        string
	BadgerPath       string
	JobWorkerCount   int
	JobQueueSize     int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":8080"),
		DBPath:           envOr("DB_PATH", "file:likescenter.db"),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		LogFile:          envOr("LOG_FILE", ""),
		RemoteBaseURL:    envOr("REMOTE_BASE_URL", ""),
		RemoteTimeout:    envDurationOr("REMOTE_TIMEOUT", 15*time.Second),
		RemoteRatePerSec: envFloatOr("REMOTE_RATE_PER_SEC", 10),
		MockLatency:      envDurationOr("MOCK_LATENCY", 0),
		PageSize:         envIntOr("PAGE_SIZE", 20),
		UnblurDuration:   envDurationOr("UNBLUR_DURATION", 120*time.Second),
		KVBackend:        strings.ToLower(envOr("KV_BACKEND", KVBackendSQLite)),
		BadgerPath:       envOr("BADGER_PATH", "data/kv"),
		JobWorkerCount:   envIntOr("JOB_WORKER_COUNT", 2),
		JobQueueSize:     envIntOr("JOB_QUEUE_SIZE", 64),
	}
}

// UsesMockRemote reports whether no remote endpoint is configured, in which
// case the in-process mock source is wired instead.
func (c Config) UsesMockRemote() bool {
	return c.RemoteBaseURL == ""
}

// Validate returns the first configuration problem found.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100, got %d", c.PageSize)
	}
	if c.UnblurDuration <= 0 {
		return fmt.Errorf("UNBLUR_DURATION must be positive, got %v", c.UnblurDuration)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive, got %v", c.RemoteTimeout)
	}
	if c.RemoteRatePerSec < 0 {
		return fmt.Errorf("REMOTE_RATE_PER_SEC cannot be negative, got %v", c.RemoteRatePerSec)
	}
	if c.RemoteBaseURL != "" && !strings.HasPrefix(c.RemoteBaseURL, "http://") && !strings.HasPrefix(c.RemoteBaseURL, "https://") {
		return fmt.Errorf("REMOTE_BASE_URL must be an http(s) URL, got %q", c.RemoteBaseURL)
	}
	switch c.KVBackend {
	case KVBackendSQLite:
	case KVBackendBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH cannot be empty when KV_BACKEND=badger")
		}
	default:
		return fmt.Errorf("KV_BACKEND must be %q or %q, got %q", KVBackendSQLite, KVBackendBadger, c.KVBackend)
	}
	if c.JobWorkerCount < 1 {
		return fmt.Errorf("JOB_WORKER_COUNT must be at least 1, got %d", c.JobWorkerCount)
	}
	if c.JobQueueSize < 1 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be at least 1, got %d", c.JobQueueSize)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
