// Package config loads microdesk settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppName prefixes export file names.
const AppName = "microdesk"

type Config struct {
	Addr         string
	Store        string
	SQLitePath   string
	PostgresDSN  string
	FallbackDir  string
	WorkoutsDir  string
	StaticDir    string
	TickInterval time.Duration
	Location     *time.Location
}

// Load reads the environment, after loading envFile if it exists. An empty
// envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Addr:        getEnv("MICRODESK_ADDR", ":8080"),
		Store:       getEnv("MICRODESK_STORE", "sqlite"),
		SQLitePath:  getEnv("MICRODESK_SQLITE_PATH", "microdesk.db"),
		PostgresDSN: getEnv("MICRODESK_POSTGRES_DSN", ""),
		FallbackDir: getEnv("MICRODESK_FALLBACK_DIR", "sessions"),
		WorkoutsDir: getEnv("MICRODESK_WORKOUTS_DIR", "data/workouts"),
		StaticDir:   getEnv("MICRODESK_STATIC_DIR", "static"),
	}

	switch cfg.Store {
	case "sqlite", "postgres", "file":
	default:
		return nil, fmt.Errorf("MICRODESK_STORE: unknown backend %q", cfg.Store)
	}

	interval, err := time.ParseDuration(getEnv("MICRODESK_TICK_INTERVAL", "250ms"))
	if err != nil {
		return nil, fmt.Errorf("MICRODESK_TICK_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("MICRODESK_TICK_INTERVAL must be positive, got %v", interval)
	}
	cfg.TickInterval = interval

	loc, err := time.LoadLocation(getEnv("MICRODESK_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("MICRODESK_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
