package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"rpsls_wager/internal/game"
	"rpsls_wager/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string
	Version       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Game limits
	MinStake       int64
	MaxStake       int64
	DefaultTimeout time.Duration
	MinTimeout     time.Duration
	MaxTimeout     time.Duration

	GameRateLimit  int
	GameRateWindow time.Duration
	APIRateLimit   int
	APIRateWindow  time.Duration

	// Cron spec for the timeout sweeper.
	SweepSpec string
}

// Load reads .env (if present) and the environment, exiting on invalid config.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment.
func FromEnv() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	cfg := &Config{
		AppPort:       envString("APP_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     jwtSecret,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		Version:       envString("APP_VERSION", "dev"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		LogLevel: envString("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		MinStake:       envInt64("MIN_STAKE", 1),
		MaxStake:       envInt64("MAX_STAKE", 1_000_000_000),
		DefaultTimeout: envSeconds("DEFAULT_TIMEOUT_SECONDS", 300),
		MinTimeout:     envSeconds("MIN_TIMEOUT_SECONDS", 30),
		MaxTimeout:     envSeconds("MAX_TIMEOUT_SECONDS", 86400),

		GameRateLimit:  envInt("GAME_RATE_LIMIT", 60),
		GameRateWindow: envSeconds("GAME_RATE_WINDOW", 60),
		APIRateLimit:   envInt("API_RATE_LIMIT", 120),
		APIRateWindow:  envSeconds("API_RATE_WINDOW_SECONDS", 60),

		SweepSpec: envString("SWEEP_SPEC", "@every 30s"),
	}

	if cfg.MaxStake > game.MaxStake {
		return nil, fmt.Errorf("MAX_STAKE %d exceeds %d", cfg.MaxStake, int64(game.MaxStake))
	}
	if cfg.MinStake > cfg.MaxStake {
		return nil, fmt.Errorf("MIN_STAKE %d exceeds MAX_STAKE %d", cfg.MinStake, cfg.MaxStake)
	}
	if cfg.MinTimeout > cfg.MaxTimeout {
		return nil, fmt.Errorf("MIN_TIMEOUT_SECONDS exceeds MAX_TIMEOUT_SECONDS")
	}
	if cfg.DefaultTimeout < cfg.MinTimeout || cfg.DefaultTimeout > cfg.MaxTimeout {
		return nil, fmt.Errorf("DEFAULT_TIMEOUT_SECONDS must lie within [%s, %s]", cfg.MinTimeout, cfg.MaxTimeout)
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Non-positive or malformed values fall back to the default.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		logger.Warn("ignoring invalid env value", "key", key, "value", v)
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
		logger.Warn("ignoring invalid env value", "key", key, "value", v)
	}
	return def
}

func envSeconds(key string, def int) time.Duration {
	n := envInt(key, def)
	if n == 0 || int64(n) > int64(math.MaxInt64/time.Second) {
		n = def
	}
	return time.Duration(n) * time.Second
}
