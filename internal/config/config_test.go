package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("MIGRATIONS_PATH", "")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("PHONE_COUNTRY_CODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gymflow.db", cfg.DatabasePath)
	assert.Equal(t, "migrations", cfg.MigrationsPath)
	assert.Equal(t, "", cfg.MetricsAddr)
	assert.Equal(t, "20", cfg.PhoneCountryCode)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("METRICS_ADDR", ":9091")
	t.Setenv("PHONE_COUNTRY_CODE", "49")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.Equal(t, "49", cfg.PhoneCountryCode)
}
