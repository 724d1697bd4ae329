package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CACHE_VOLATILE_TTL", "")
	t.Setenv("CACHE_NAMESPACE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Cache.ReferenceTTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.VolatileTTL)
	assert.Equal(t, "jivit_cache_", cfg.Cache.Namespace)
	assert.Same(t, cfg, Global)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_VOLATILE_TTL", "1500")
	t.Setenv("APP_BASIC_AUTH", "admin:secret,editor:pass")
	t.Setenv("VALKEY_ENABLED", "yes")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Cache.ReferenceTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Cache.VolatileTTL)
	assert.Equal(t, []string{"admin:secret", "editor:pass"}, cfg.App.BasicAuth)
	assert.True(t, cfg.Database.ValkeyEnabled)
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_TTL", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("SOME_TTL", time.Minute))
}
