/*
Package config loads tracker configuration with viper.

PURPOSE:
  Everything environment-specific lives here: server settings, store
  driver selection, token parameters, the reminder schedule, and - most
  importantly - the incentive RATE TABLE. Base and global percents are
  business inputs, not code: they are read from configuration, validated
  at startup, and never defaulted to invented numbers.

SOURCES:
  1. Optional .env file (godotenv, ignored if absent)
  2. config file (config.yaml in the working dir or -config path)
  3. environment variables (TRACKER_ prefix, e.g. TRACKER_JWT_SECRET)
*/
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/vantage/sales-tracker/incentive"
)

type Config struct {
	Server struct {
		Port           int      `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"server"`

	Store struct {
		// Driver is one of: memory, sqlite, postgres.
		Driver      string `mapstructure:"driver"`
		SQLitePath  string `mapstructure:"sqlite_path"`
		PostgresURL string `mapstructure:"postgres_url"`
	} `mapstructure:"store"`

	JWT struct {
		Secret      string `mapstructure:"secret"`
		Issuer      string `mapstructure:"issuer"`
		ExpiryHours int    `mapstructure:"expiry_hours"`
	} `mapstructure:"jwt"`

	Reminder struct {
		Enabled bool `mapstructure:"enabled"`
		// CronSpec is a standard 5-field cron expression.
		CronSpec string `mapstructure:"cron_spec"`
	} `mapstructure:"reminder"`

	Rates struct {
		// Global is the organization-wide percent as a decimal string,
		// e.g. "0.02" for 2%.
		Global string `mapstructure:"global"`
		// Base maps service name to its base percent decimal string.
		Base map[string]string `mapstructure:"base"`
	} `mapstructure:"rates"`
}

// Load reads configuration from the optional .env file, the config file
// at path (empty means ./config.yaml if present), and TRACKER_-prefixed
// environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "tracker.db")
	v.SetDefault("jwt.issuer", "sales-tracker")
	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.cron_spec", "0 8 * * *")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config is fine; env vars may carry everything.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without defaults (jwt.secret, store.postgres_url, rates.global)
	// would never see their TRACKER_ variables. Bind every scalar key
	// explicitly; rates.base is a map and comes from the config file.
	for _, key := range []string{
		"server.port", "server.allowed_origins",
		"store.driver", "store.sqlite_path", "store.postgres_url",
		"jwt.secret", "jwt.issuer", "jwt.expiry_hours",
		"reminder.enabled", "reminder.cron_spec",
		"rates.global",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// RateTable converts the configured rate strings into the engine's
// decimal table and validates it, so a misconfigured percent fails at
// startup instead of on the first payment.
func (c *Config) RateTable() (incentive.RateTable, error) {
	global, err := decimal.NewFromString(c.Rates.Global)
	if err != nil {
		return incentive.RateTable{}, fmt.Errorf("rates.global %q: %w", c.Rates.Global, err)
	}
	base := make(map[string]decimal.Decimal, len(c.Rates.Base))
	for service, raw := range c.Rates.Base {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return incentive.RateTable{}, fmt.Errorf("rates.base[%s] %q: %w", service, raw, err)
		}
		base[service] = d
	}
	rt := incentive.RateTable{Base: base, Global: global}
	if err := rt.Validate(); err != nil {
		return incentive.RateTable{}, err
	}
	return rt, nil
}

// Validate checks the non-rate settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("store.driver %q: want memory, sqlite, or postgres", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.PostgresURL == "" {
		return fmt.Errorf("store.postgres_url required for postgres driver")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}
