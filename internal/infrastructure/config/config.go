package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	AppURL    string `env:"APP_URL,   default=http://localhost:5173"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	Workers   int    `env:"ACTIVITY_WORKERS, default=4"`

	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=famlink"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// RateLimitConfig is the tunable policy table for the guarded action
// classes: auth covers register/login/join, invite covers the public
// invite-code preview.
type RateLimitConfig struct {
	AuthWindowSeconds   int `env:"RATE_AUTH_WINDOW_SECONDS,   default=300"`
	AuthMaxRequests     int `env:"RATE_AUTH_MAX_REQUESTS,     default=20"`
	InviteWindowSeconds int `env:"RATE_INVITE_WINDOW_SECONDS, default=60"`
	InviteMaxRequests   int `env:"RATE_INVITE_MAX_REQUESTS,   default=10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
