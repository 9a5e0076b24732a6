package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MICRODESK_ADDR", ":9999")
	t.Setenv("MICRODESK_STORE", "file")
	t.Setenv("MICRODESK_TICK_INTERVAL", "100ms")
	t.Setenv("MICRODESK_TIMEZONE", "UTC")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MICRODESK_WORKOUTS_DIR=/srv/workouts\n"), 0o644))
	t.Setenv("MICRODESK_WORKOUTS_DIR", "")
	os.Unsetenv("MICRODESK_WORKOUTS_DIR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/workouts", cfg.WorkoutsDir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MICRODESK_STORE", "redis"},
		{"MICRODESK_TICK_INTERVAL", "soon"},
		{"MICRODESK_TICK_INTERVAL", "-1s"},
		{"MICRODESK_TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
