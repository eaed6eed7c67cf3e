// Package config loads client settings from flags, environment
// (SESSIONKEEPER_*) and an optional config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables
const EnvPrefix = "SESSIONKEEPER"

// Storage drivers
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config is the client configuration
type Config struct {
	Server      string        `mapstructure:"server"`
	ProfilePath string        `mapstructure:"profile_path"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	Storage     StorageConfig `mapstructure:"storage"`
	Redis       RedisConfig   `mapstructure:"redis"`
	Log         LogConfig     `mapstructure:"log"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	// Passphrase включает шифрование токенов в хранилище
	Passphrase string `mapstructure:"passphrase"`
}

// RedisConfig for the redis driver
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Prefix   string `mapstructure:"prefix"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig for the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers defaults and environment binding on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("profile_path", "/clients/mypage")
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("storage.driver", DriverBolt)
	v.SetDefault("storage.path", "sessionkeeper.db")
	v.SetDefault("storage.passphrase", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.prefix", "sessionkeeper:")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file (if set on v) and decodes the configuration
func Load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.Server)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("http_timeout must be positive")
	}

	switch c.Storage.Driver {
	case DriverBolt, DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s driver", c.Storage.Driver)
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}
