package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.Matchmaking.Timeout)
	assert.Equal(t, 1600*time.Millisecond, cfg.Session.TitleDelay)
	assert.True(t, cfg.Matchmaking.AllowBots()[engine.ModeStandard])
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ROUND_DURATION=4s\nALLOW_BOTS_COOP=false\nADDR=:9000\n"), 0o600))
	t.Setenv("ADDR", ":7000")
	// godotenv writes straight into the process environment.
	t.Cleanup(func() {
		os.Unsetenv("ROUND_DURATION")
		os.Unsetenv("ALLOW_BOTS_COOP")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 4*time.Second, cfg.Session.Engine().RoundDuration)
	assert.False(t, cfg.Matchmaking.AllowBots()[engine.ModeCoop])
}

func TestLoad_RejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("READY_TIMEOUT", "soon")
		_, err := Load(missing)
		assert.Error(t, err)
	})
	t.Run("non-positive timeout", func(t *testing.T) {
		t.Setenv("MATCHMAKING_TIMEOUT", "0s")
		_, err := Load(missing)
		assert.Error(t, err)
	})
}
