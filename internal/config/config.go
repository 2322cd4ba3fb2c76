package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	ListenAddr  string
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	AutoMigrate bool

	MaxChainDepth       int
	RegistryCacheTTL    time.Duration
	RegistryConcurrency int
	RegistrySeed        string
	CallTimeout         time.Duration

	DecayInterval  time.Duration
	RecoveryWindow time.Duration
	DecayFactor    float64

	ContactConcurrency int
	RetryAttempts      int
	RetryBaseDelay     time.Duration
}

var ErrNoDatabase = errors.New("DATABASE_URL not set")

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment, after an optional .env file.
// A missing DATABASE_URL is reported as ErrNoDatabase alongside a usable
// config so callers can decide whether to run without Postgres.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:         getenv("APP_ENV", "development"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "console"),

		AutoMigrate: getenvBool("AUTO_MIGRATE", true),

		MaxChainDepth:       getenvInt("MAX_CHAIN_DEPTH", 5),
		RegistryCacheTTL:    getenvDuration("REGISTRY_CACHE_TTL", 24*time.Hour),
		RegistryConcurrency: getenvInt("REGISTRY_CONCURRENCY", 4),
		RegistrySeed:        os.Getenv("REGISTRY_SEED"),
		CallTimeout:         getenvDuration("CALL_TIMEOUT", 15*time.Second),

		DecayInterval:  getenvDuration("DECAY_INTERVAL", 5*time.Minute),
		RecoveryWindow: getenvDuration("RECOVERY_WINDOW", 30*time.Minute),
		DecayFactor:    getenvFloat("DECAY_FACTOR", 0.8),

		ContactConcurrency: getenvInt("CONTACT_CONCURRENCY", 2),
		RetryAttempts:      getenvInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:     getenvDuration("RETRY_BASE_DELAY", 500*time.Millisecond),
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	if cfg.DatabaseURL == "" {
		return cfg, ErrNoDatabase
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxChainDepth < 1 {
		return fmt.Errorf("MAX_CHAIN_DEPTH must be positive, got %d", c.MaxChainDepth)
	}
	if c.DecayFactor <= 0 || c.DecayFactor >= 1 {
		return fmt.Errorf("DECAY_FACTOR must be in (0,1), got %v", c.DecayFactor)
	}
	if c.RegistryConcurrency < 1 {
		return fmt.Errorf("REGISTRY_CONCURRENCY must be positive, got %d", c.RegistryConcurrency)
	}
	if c.ContactConcurrency < 1 {
		return fmt.Errorf("CONTACT_CONCURRENCY must be positive, got %d", c.ContactConcurrency)
	}
	return nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(v); err == nil {
			return out
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.ParseFloat(v, 64); err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if out, err := time.ParseDuration(v); err == nil {
			return out
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.ParseBool(v); err == nil {
			return out
		}
	}
	return def
}
