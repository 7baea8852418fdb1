package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 24, cfg.WindowHours)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
	assert.Equal(t, 15, cfg.HotspotLimit)
	assert.Equal(t, 20, cfg.AlertLimit)
	assert.Equal(t, 20, cfg.RiskLimit)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base: http://query-api:8080
window_hours: 48
window_choices: [24, 48]
refresh_interval: 10s
surface: web
`), 0o600))

	t.Setenv("DASHBOARD_CONFIG", path)
	t.Setenv("DASHBOARD_WINDOW_HOURS", "72")
	t.Setenv("DASHBOARD_HTTP_TIMEOUT_SECONDS", "2.5")
	t.Setenv("DASHBOARD_ALERT_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://query-api:8080", cfg.APIBase)
	assert.Equal(t, 72, cfg.WindowHours)
	assert.Equal(t, []int{24, 48}, cfg.WindowChoices)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 2500*time.Millisecond, cfg.HTTPTimeout)
	assert.Equal(t, 20, cfg.AlertLimit)
	assert.Equal(t, "web", cfg.Surface)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestWindowChoicesFromEnv(t *testing.T) {
	t.Setenv("DASHBOARD_WINDOW_CHOICES", "6, x, 12,-1")
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, []int{6, 12}, cfg.WindowChoices)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.APIBase = " "
	cfg.Surface = "gui"
	cfg.RiskLimit = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_base")
	assert.Contains(t, err.Error(), "gui")
	assert.Contains(t, err.Error(), "risk_limit")
}
