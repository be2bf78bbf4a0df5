package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, 5000, cfg.StartingBudget)
	require.Equal(t, 15*time.Second, cfg.TurnTimer)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("STARTING_BUDGET", "8000")
	t.Setenv("TURN_TIMER", "30s")
	t.Setenv("CATALOG_PATH", "/tmp/pool.json")

	cfg := Load()
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, 8000, cfg.StartingBudget)
	require.Equal(t, 30*time.Second, cfg.TurnTimer)
	require.Equal(t, "/tmp/pool.json", cfg.CatalogPath)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("STARTING_BUDGET", "lots")
	t.Setenv("TURN_TIMER", "soon")

	cfg := Load()
	require.Equal(t, 5000, cfg.StartingBudget)
	require.Equal(t, 15*time.Second, cfg.TurnTimer)
}
