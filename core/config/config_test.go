package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiform/core/config"
)

// Each test uses its own config type because loaded values are cached per
// concrete type for the lifetime of the process.

func TestLoad(t *testing.T) {
	type serverConfig struct {
		Host    string        `env:"TEST_CFG_HOST" envDefault:"localhost"`
		Port    int           `env:"TEST_CFG_PORT" envDefault:"8080"`
		Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
	}

	t.Setenv("TEST_CFG_HOST", "example.com")
	t.Setenv("TEST_CFG_PORT", "9090")

	var cfg serverConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoad_Defaults(t *testing.T) {
	type defaultsConfig struct {
		Name  string `env:"TEST_CFG_UNSET_NAME" envDefault:"fallback"`
		Count int    `env:"TEST_CFG_UNSET_COUNT" envDefault:"3"`
	}

	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "fallback", cfg.Name)
	assert.Equal(t, 3, cfg.Count)
}

func TestLoad_RequiredMissing(t *testing.T) {
	type requiredConfig struct {
		Secret string `env:"TEST_CFG_REQUIRED_SECRET,required"`
	}

	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.Error(t, err)
}

func TestLoad_CachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CFG_CACHED" envDefault:"initial"`
	}

	t.Setenv("TEST_CFG_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))
	require.Equal(t, "first", first.Value)

	// A later environment change must not alter the cached value.
	t.Setenv("TEST_CFG_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)
}

func TestLoad_NilTarget(t *testing.T) {
	err := config.Load[struct{ X int }](nil)
	assert.ErrorIs(t, err, config.ErrNilConfig)
}

func TestMustLoad(t *testing.T) {
	t.Run("returns on success", func(t *testing.T) {
		type okConfig struct {
			Value string `env:"TEST_CFG_MUST_OK" envDefault:"ok"`
		}
		var cfg okConfig
		assert.NotPanics(t, func() { config.MustLoad(&cfg) })
		assert.Equal(t, "ok", cfg.Value)
	})

	t.Run("panics on failure", func(t *testing.T) {
		type badConfig struct {
			Value string `env:"TEST_CFG_MUST_MISSING,required"`
		}
		var cfg badConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
