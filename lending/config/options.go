package config

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/bookbuster/pkg/sqldb"
)

type Option func(cfg *Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(cfg *Config) {
		cfg.Log.LogLevel = level
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.Server.WriteTimeout = timeout
	}
}

func WithPort(port string) Option {
	return func(cfg *Config) {
		if port != "" {
			cfg.Server.Port = port
		}
	}
}

// WithDriver switches the database dialect, e.g. to sqlite3 for a local file.
func WithDriver(driver sqldb.Dialect) Option {
	return func(cfg *Config) {
		if driver != "" {
			cfg.Database.Driver = driver
		}
	}
}
