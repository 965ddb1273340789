// Package config loads process settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port              string        `mapstructure:"PORT"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	StoreDriver       string        `mapstructure:"STORE_DRIVER"`
	SQLitePath        string        `mapstructure:"SQLITE_PATH"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	BusinessTimezone  string        `mapstructure:"BUSINESS_TIMEZONE"`
	BreakStart        string        `mapstructure:"BREAK_START"`
	BreakEnd          string        `mapstructure:"BREAK_END"`
	MetricParallelism int           `mapstructure:"METRIC_PARALLELISM"`
	TemplatesFile     string        `mapstructure:"TEMPLATES_FILE"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// Load reads envFile if it exists, then the environment. Environment values win.
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "kpi.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("BUSINESS_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("BREAK_START", "12:00")
	v.SetDefault("BREAK_END", "13:00")
	v.SetDefault("METRIC_PARALLELISM", 4)
	v.SetDefault("TEMPLATES_FILE", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := c.Break(); err != nil {
		return err
	}
	if _, err := generic.LoadBusinessLocation(c.BusinessTimezone); err != nil {
		return fmt.Errorf("config: BUSINESS_TIMEZONE: %w", err)
	}
	if c.MetricParallelism < 1 {
		return fmt.Errorf("config: METRIC_PARALLELISM must be positive, got %d", c.MetricParallelism)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return nil
}

// Break parses the configured lunch break.
func (c Config) Break() (generic.BreakWindow, error) {
	start, err := generic.ParseClockTime(c.BreakStart)
	if err != nil {
		return generic.BreakWindow{}, fmt.Errorf("config: BREAK_START: %w", err)
	}
	end, err := generic.ParseClockTime(c.BreakEnd)
	if err != nil {
		return generic.BreakWindow{}, fmt.Errorf("config: BREAK_END: %w", err)
	}
	if end.Hour*60+end.Minute <= start.Hour*60+start.Minute {
		return generic.BreakWindow{}, fmt.Errorf("config: break %s-%s ends before it starts", c.BreakStart, c.BreakEnd)
	}
	return generic.BreakWindow{Start: start, End: end}, nil
}

// Location resolves the business timezone.
func (c Config) Location() *time.Location {
	return generic.BusinessLocation(c.BusinessTimezone)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
