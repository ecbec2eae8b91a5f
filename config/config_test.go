package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTOMLDefaults(t *testing.T) {
	tom := &TOML{}
	require.NoError(t, setTOMLDefaults(tom))

	assert.Equal(t, int64(DefaultCheckpointInterval), int64(tom.Session.CheckpointInterval))
	assert.Equal(t, DefaultCacheWindows, tom.Session.CacheWindows)
	assert.NotNil(t, tom.Redis)
	assert.NotNil(t, tom.Tracing)
}

func TestValidateTOMLRejectsOutOfRangeCacheWindows(t *testing.T) {
	tom := &TOML{
		Session: &TOMLSession{CacheWindows: -1},
		Redis:   &TOMLRedis{},
		Tracing: &TOMLTracing{},
	}
	err := validateTOML(tom)
	assert.Error(t, err)
}

func TestValidateTOMLRedisRequiresAddr(t *testing.T) {
	tom := &TOML{
		Session: &TOMLSession{CacheWindows: DefaultCacheWindows},
		Redis:   &TOMLRedis{Enabled: true},
		Tracing: &TOMLTracing{},
	}
	err := validateTOML(tom)
	assert.Error(t, err)
}

func TestEffectivePrecedence(t *testing.T) {
	cfg := &Config{
		CLI:  &CLI{CheckpointInterval: 0, CacheWindows: 0},
		TOML: &TOML{Session: &TOMLSession{CheckpointInterval: 5000, CacheWindows: 10}},
	}
	assert.Equal(t, int64(5000), cfg.EffectiveCheckpointInterval())
	assert.Equal(t, 10, cfg.EffectiveCacheWindows())

	cfg.CLI.CacheWindows = 99
	assert.Equal(t, 99, cfg.EffectiveCacheWindows())
}

func TestDurationUnmarshalAcceptsIntOrDuration(t *testing.T) {
	var d duration
	require.NoError(t, d.UnmarshalText([]byte("4096")))
	assert.Equal(t, duration(4096), d)

	require.NoError(t, d.UnmarshalText([]byte("5s")))
	assert.Equal(t, duration(5_000_000_000), d)
}
