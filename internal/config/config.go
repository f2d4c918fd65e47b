package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Dedupe DedupeConfig `yaml:"dedupe" mapstructure:"dedupe"`
}

// StoreConfig configures the database backend. For sqlite, DatabaseURL is
// a file path or DSN.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DedupeConfig tunes batch runs and merges.
type DedupeConfig struct {
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	BatchLimit    int     `yaml:"batch_limit" mapstructure:"batch_limit"`
	SEORetries    int     `yaml:"seo_retries" mapstructure:"seo_retries"`
	// TxAttempts and TxBackoffMs replay write transactions that hit a lock
	// conflict.
	TxAttempts  int `yaml:"tx_attempts" mapstructure:"tx_attempts"`
	TxBackoffMs int `yaml:"tx_backoff_ms" mapstructure:"tx_backoff_ms"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WEVOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so AutomaticEnv can override it.
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("dedupe.rate_per_second", 0)
	v.SetDefault("dedupe.batch_limit", 0)
	v.SetDefault("dedupe.seo_retries", 10)
	v.SetDefault("dedupe.tx_attempts", 3)
	v.SetDefault("dedupe.tx_backoff_ms", 50)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are
// "migrate" and "dedupe"; every problem is reported in one error.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "migrate", "dedupe":
		switch c.Store.Driver {
		case DriverPostgres, DriverSQLite:
		default:
			errs = append(errs, "store.driver must be postgres or sqlite, got "+quote(c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
		if c.Store.MaxConns < 0 || c.Store.MinConns < 0 || (c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns) {
			errs = append(errs, "store.min_conns must be between 0 and store.max_conns")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == "dedupe" {
		if c.Dedupe.RatePerSecond < 0 {
			errs = append(errs, "dedupe.rate_per_second must be >= 0")
		}
		if c.Dedupe.BatchLimit < 0 {
			errs = append(errs, "dedupe.batch_limit must be >= 0")
		}
		if c.Dedupe.SEORetries < 0 {
			errs = append(errs, "dedupe.seo_retries must be >= 0")
		}
		if c.Dedupe.TxAttempts < 0 || c.Dedupe.TxBackoffMs < 0 {
			errs = append(errs, "dedupe.tx_attempts and dedupe.tx_backoff_ms must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

func quote(s string) string { return `"` + s + `"` }

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
