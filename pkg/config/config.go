// Package config loads tool configuration for the quarry CLI from a file,
// environment variables, and flags, in that order of increasing precedence.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/quarrydata/quarry/pkg/errors"
)

// Config holds the CLI's tunables.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	// MaxBatchRows caps record batch sizes on export; 0 means chunk-bounded
	// only.
	MaxBatchRows int64 `mapstructure:"max_batch_rows"`
	// Compress writes zstd-framed output files when set.
	Compress bool `mapstructure:"compress"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		MaxBatchRows: 0,
		Compress:     false,
	}
}

// Load reads configuration from the given file (optional) and QUARRY_*
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("max_batch_rows", 0)
	v.SetDefault("compress", false)

	v.SetEnvPrefix("QUARRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse config")
	}
	if cfg.MaxBatchRows < 0 {
		return nil, errors.Newf(errors.ErrorTypeConfig,
			"max_batch_rows must be non-negative, got %d", cfg.MaxBatchRows)
	}
	return cfg, nil
}
