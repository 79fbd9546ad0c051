package main

import (
	"fmt"
	"strings"

	"github.com/Alp4ka/relayconn"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Pagination PaginationConfig `mapstructure:"pagination"`
}

type DatabaseConfig struct {
	// Driver is one of "sqlite", "postgres" or "mysql".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type PaginationConfig struct {
	MaxLimit int    `mapstructure:"max_limit"`
	Policy   string `mapstructure:"policy"`
	Stale    string `mapstructure:"stale"`
}

// newViper returns a viper instance reading RELAYD_* environment variables,
// e.g. RELAYD_DATABASE_DSN for database.dsn.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("relayd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "relayd.db")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("pagination.max_limit", relayconn.MaxLimit)
	v.SetDefault("pagination.policy", "default-first")
	v.SetDefault("pagination.stale", "reset")

	return v
}

func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("cannot parse log level: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(level)

	return logger, nil
}

func (c PaginationConfig) options(logger logrus.FieldLogger) ([]relayconn.Option, error) {
	policy, err := relayconn.ParseArgsPolicy(c.Policy)
	if err != nil {
		return nil, err
	}

	stale, err := relayconn.ParseStalePolicy(c.Stale)
	if err != nil {
		return nil, err
	}

	if err = relayconn.ValidateMaxLimit(c.MaxLimit); err != nil {
		return nil, fmt.Errorf("invalid pagination.max_limit: %w", err)
	}

	return []relayconn.Option{
		relayconn.WithLogger(logger),
		relayconn.WithArgsPolicy(policy),
		relayconn.WithStalePolicy(stale),
		relayconn.WithMaxLimit(c.MaxLimit),
	}, nil
}
