package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAX_CHAIN_DEPTH", "")

	cfg, err := Load()
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.MaxChainDepth)
	assert.Equal(t, 30*time.Minute, cfg.RecoveryWindow)
	assert.Equal(t, 0.8, cfg.DecayFactor)
	assert.Equal(t, 2, cfg.ContactConcurrency)
	assert.Equal(t, 4, cfg.RegistryConcurrency)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ownerscope")
	t.Setenv("MAX_CHAIN_DEPTH", "3")
	t.Setenv("DECAY_INTERVAL", "1m")
	t.Setenv("RETRY_BASE_DELAY", "not-a-duration")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("REGISTRY_SEED", "testdata/registry.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxChainDepth)
	assert.Equal(t, time.Minute, cfg.DecayInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBaseDelay)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "testdata/registry.json", cfg.RegistrySeed)
}

func TestLoadRejectsBadDecayFactor(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ownerscope")
	t.Setenv("DECAY_FACTOR", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DECAY_FACTOR")
}
