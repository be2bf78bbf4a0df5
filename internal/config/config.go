package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	DatabaseURL    string
	CatalogPath    string
	StartingBudget int
	TurnTimer      time.Duration
	RoundOverDelay time.Duration
	NextRoundDelay time.Duration
}

// Load reads .env if present, then the environment. Every field has a
// development default so a bare `go run` works without setup.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:           getenv("ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatalogPath:    getenv("CATALOG_PATH", "data/cricketers.json"),
		StartingBudget: getint("STARTING_BUDGET", 5000),
		TurnTimer:      getdur("TURN_TIMER", 15*time.Second),
		RoundOverDelay: getdur("ROUND_OVER_DELAY", 5*time.Second),
		NextRoundDelay: getdur("NEXT_ROUND_DELAY", 2*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
