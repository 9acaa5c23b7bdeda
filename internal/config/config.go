package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	DB      DatabaseConfig
	Relay   RelayConfig
	Sync    SyncConfig
	API     APIConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Path string
}

type RelayConfig struct {
	Transport    string // "storage" or "redis"
	CleanupDelay time.Duration
	RedisAddr    string
	RedisChannel string
}

type SyncConfig struct {
	Enabled    bool
	Interval   time.Duration
	Workers    int
	BufferSize int
}

type APIConfig struct {
	RateLimit  int // requests per second, global
	MinLatency time.Duration
	MaxLatency time.Duration
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/alert-sync.db"),
		},
		Relay: RelayConfig{
			Transport:    getEnv("RELAY_TRANSPORT", "storage"),
			CleanupDelay: getEnvDuration("RELAY_CLEANUP_DELAY", 500*time.Millisecond),
			RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
			RedisChannel: getEnv("REDIS_CHANNEL", "alert-sync:events"),
		},
		Sync: SyncConfig{
			Enabled:    getEnvBool("SYNC_ENABLED", true),
			Interval:   getEnvDuration("SYNC_INTERVAL", 30*time.Second),
			Workers:    getEnvInt("SYNC_WORKERS", 1),
			BufferSize: getEnvInt("SYNC_BUFFER_SIZE", 4),
		},
		API: APIConfig{
			RateLimit:  getEnvInt("API_RATE_LIMIT", 5),
			MinLatency: getEnvDuration("MOCK_MIN_LATENCY", 200*time.Millisecond),
			MaxLatency: getEnvDuration("MOCK_MAX_LATENCY", 800*time.Millisecond),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Relay.Transport != "storage" && c.Relay.Transport != "redis" {
		return fmt.Errorf("invalid relay transport: %s", c.Relay.Transport)
	}
	if c.Relay.CleanupDelay < 100*time.Millisecond {
		return fmt.Errorf("relay cleanup delay must be at least 100ms")
	}

	if c.Sync.Interval < time.Second {
		return fmt.Errorf("sync interval must be at least 1 second")
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("sync workers must be at least 1")
	}

	if c.API.MaxLatency < c.API.MinLatency {
		return fmt.Errorf("mock max latency must not be below min latency")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
