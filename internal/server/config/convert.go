package config

import (
	"os"

	"github.com/levkk/kvstore/internal/server/kvserver"
	"github.com/levkk/kvstore/internal/telemetry/logger"
)

// ToKVServerConfig converts the kv section to a kvserver.Config.
func ToKVServerConfig(cfg *KVConfig) *kvserver.Config {
	if cfg == nil {
		return kvserver.DefaultConfig()
	}

	return &kvserver.Config{
		Address:        cfg.Addr,
		TickInterval:   cfg.TickInterval,
		IdleTimeout:    cfg.IdleTimeout,
		ReadBufferSize: cfg.ReadBufferSize,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
	}
}

// ToLoggerConfig converts the log section to a logger.Config.
func ToLoggerConfig(cfg *LogSection) logger.Config {
	if cfg == nil {
		return logger.DefaultConfig()
	}

	return logger.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: os.Stderr,
		File: logger.FileConfig{
			Path:       cfg.File,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
		},
	}
}
