package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       slog.Level
	RequestTimeout time.Duration

	Auth       AuthConfig
	StatusList StatusListConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration
}

// StatusListConfig configures the status list module.
type StatusListConfig struct {
	// Store selects the backend; empty means inferred from the configured URLs.
	Store string
	// IrreversibleRevocation forbids clearing a set entry of a revocation list.
	IrreversibleRevocation bool
	StatsInterval          time.Duration
	// MaxRetries bounds optimistic lock retries of the Redis store.
	MaxRetries int
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit producer. Empty Brokers disables Kafka.
type KafkaConfig struct {
	Brokers         string
	AuditTopic      string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:           getEnv("STATUS_LIST_ADDR", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "dev"),
		LogLevel:       parseLevel(os.Getenv("LOG_LEVEL")),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     getEnv("JWT_ISSUER", "statusreg"),
			JWTAudience:   getEnv("JWT_AUDIENCE", "statusreg"),
			TokenTTL:      getDuration("TOKEN_TTL", 15*time.Minute),
		},
		StatusList: StatusListConfig{
			Store:                  strings.ToLower(strings.TrimSpace(os.Getenv("STATUS_LIST_STORE"))),
			IrreversibleRevocation: getBool("REVOCATION_IRREVERSIBLE", false),
			StatsInterval:          getDuration("STATS_INTERVAL", 30*time.Second),
			MaxRetries:             getInt("REDIS_MAX_RETRIES", 8),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			AuditTopic:      getEnv("KAFKA_AUDIT_TOPIC", "status-list.audit"),
			Acks:            getEnv("KAFKA_ACKS", "all"),
			Retries:         getInt("KAFKA_RETRIES", 3),
			DeliveryTimeout: getDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
		},
	}
	if cfg.StatusList.Store == "" {
		cfg.StatusList.Store = inferStore(cfg)
	}
	return cfg
}

// Validate reports configuration that cannot start a server.
func (s Server) Validate() error {
	switch s.StatusList.Store {
	case StoreMemory:
	case StorePostgres:
		if s.Database.URL == "" {
			return fmt.Errorf("STATUS_LIST_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("STATUS_LIST_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown STATUS_LIST_STORE %q", s.StatusList.Store)
	}
	if s.Environment != "dev" && s.Auth.JWTSigningKey == "dev-secret-key-change-in-production" {
		return fmt.Errorf("JWT_SIGNING_KEY must be set outside dev")
	}
	if s.StatusList.StatsInterval <= 0 {
		return fmt.Errorf("STATS_INTERVAL must be positive")
	}
	return nil
}

func inferStore(cfg Server) string {
	switch {
	case cfg.Database.URL != "":
		return StorePostgres
	case cfg.Redis.URL != "":
		return StoreRedis
	default:
		return StoreMemory
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
