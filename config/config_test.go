package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "kpi.db", cfg.SQLitePath)
	assert.Equal(t, 4, cfg.MetricParallelism)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())

	bw, err := cfg.Break()
	require.NoError(t, err)
	assert.Equal(t, generic.DefaultBreak, bw)
}

func TestLoad_EnvFileAndEnvironment(t *testing.T) {
	// GIVEN: A .env file and an environment override
	// WHEN: Loading
	// THEN: The environment wins over the file, the file over defaults

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9000\nSTORE_DRIVER=memory\nBREAK_START=11:30\n"), 0o600))
	t.Setenv("PORT", "9100")
	t.Setenv("METRIC_PARALLELISM", "8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 8, cfg.MetricParallelism)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())

	bw, err := cfg.Break()
	require.NoError(t, err)
	assert.Equal(t, generic.ClockTime{Hour: 11, Minute: 30}, bw.Start)
}

func TestValidate(t *testing.T) {
	base := Config{
		LogLevel: "info", StoreDriver: DriverSQLite, BreakStart: "12:00", BreakEnd: "13:00",
		MetricParallelism: 4, RequestTimeout: time.Second,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }},
		{"postgres without url", func(c *Config) { c.StoreDriver = DriverPostgres }},
		{"malformed break", func(c *Config) { c.BreakStart = "noon" }},
		{"inverted break", func(c *Config) { c.BreakStart, c.BreakEnd = "13:00", "12:00" }},
		{"unknown timezone", func(c *Config) { c.BusinessTimezone = "Mars/Olympus" }},
		{"zero parallelism", func(c *Config) { c.MetricParallelism = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	pg := base
	pg.StoreDriver, pg.DatabaseURL = DriverPostgres, "postgres://localhost/kpi"
	assert.NoError(t, pg.Validate())
}
