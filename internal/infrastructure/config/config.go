package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`

	SQLite  SQLiteConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	Session SessionConfig
	Audit   AuditConfig
	Login   LoginConfig
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=rbac.db"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rbac_audit"`
}

type SessionConfig struct {
	TTL time.Duration `env:"SESSION_TTL, default=1h"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type LoginConfig struct {
	// RatePerSecond caps login attempts per client IP.
	RatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND, default=1"`
	Burst         int     `env:"LOGIN_RATE_BURST,      default=5"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
