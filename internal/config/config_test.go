package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, uint16(6379), cfg.RedisPort)
	assert.Equal(t, "5432", cfg.PostgresPort)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, uint16(4000), cfg.HttpServerPort)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "8088")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(8088), cfg.HttpServerPort)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	t.Setenv("HTTP_SERVER_PORT", "80")

	_, err := LoadConfig()
	require.Error(t, err)
}
