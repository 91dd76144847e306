package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("API_SECRET", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.API_SECRET)
	require.Equal(t, 1, cfg.ACCESS_TOKEN_EXPIRATION_DELAY)
	require.Equal(t, 72, cfg.REFRESH_TOKEN_EXPIRATION_DELAY)
	require.Equal(t, 100, cfg.OBJECTS_PER_REQUEST_LIMIT)
	require.Equal(t, "2000", cfg.PORT)
	require.Equal(t, "json", cfg.LOG_FORMAT)
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("API_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRATION_DELAY", "6")
	t.Setenv("OBJECTS_PER_REQUEST_LIMIT", "25")
	t.Setenv("BACKEND_IP", "10.0.0.7")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 6, cfg.ACCESS_TOKEN_EXPIRATION_DELAY)
	require.Equal(t, 25, cfg.OBJECTS_PER_REQUEST_LIMIT)
	require.Equal(t, "10.0.0.7", cfg.BACKEND_IP)
	require.Equal(t, "8080", cfg.PORT)

	t.Setenv("ACCESS_TOKEN_EXPIRATION_DELAY", "not a number")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 1, cfg.ACCESS_TOKEN_EXPIRATION_DELAY)
}
