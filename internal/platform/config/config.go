package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Values come from POAGATE_*
// environment variables so main stays lean.
type Config struct {
	LogLevel string

	// QuotaStore selects the backing store for quota state:
	// "memory", "postgres" or "redis".
	QuotaStore  string
	PostgresURL string
	Redis       RedisConfig

	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers []string
	AuditTopic   string
}

// RedisConfig holds connection settings for the Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		LogLevel:    envOr("POAGATE_LOG_LEVEL", "info"),
		QuotaStore:  envOr("POAGATE_QUOTA_STORE", "memory"),
		PostgresURL: os.Getenv("POAGATE_POSTGRES_URL"),
		AuditTopic:  envOr("POAGATE_AUDIT_TOPIC", "poagate.audit"),
		Redis: RedisConfig{
			URL:          os.Getenv("POAGATE_REDIS_URL"),
			PoolSize:     envIntOr("POAGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("POAGATE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if brokers := os.Getenv("POAGATE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
