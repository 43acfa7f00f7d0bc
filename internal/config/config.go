// Package config provides configuration loading for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the application reads from its config file,
// environment, or flags.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`

	Uploads struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"uploads"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.path", "$HOME/.local/share/claimflow/claims.db")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("uploads.dir", "$HOME/.local/share/claimflow/uploads")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load unmarshals the active viper configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Uploads.Dir = ExpandPath(cfg.Uploads.Dir)

	return &cfg, nil
}
