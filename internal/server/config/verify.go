package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/levkk/kvstore/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if err := verifyAddr("server.kv.addr", cfg.KV.Addr); err != nil {
		return err
	}
	if cfg.KV.TickInterval <= 0 {
		return errors.New("server.kv.tick_interval must be positive")
	}
	if cfg.KV.IdleTimeout < 0 {
		return errors.New("server.kv.idle_timeout must not be negative")
	}
	if cfg.KV.ReadBufferSize <= 0 {
		return errors.New("server.kv.read_buffer_size must be positive")
	}
	if cfg.KV.MaxRequestSize < 0 {
		return errors.New("server.kv.max_request_size must not be negative")
	}
	if cfg.KV.RateLimit < 0 {
		return errors.New("server.kv.rate_limit must not be negative")
	}

	if cfg.HTTP.Enabled {
		if err := verifyAddr("server.http.addr", cfg.HTTP.Addr); err != nil {
			return err
		}
		if cfg.HTTP.Addr == cfg.KV.Addr {
			return fmt.Errorf("server.http.addr conflicts with server.kv.addr (%s)", cfg.KV.Addr)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is invalid (debug, info, warn, error)", cfg.Level)
	}
	if !logger.ValidFormat(cfg.Format) {
		return fmt.Errorf("log.format %q is invalid (json, text)", cfg.Format)
	}
	if cfg.File != "" && cfg.MaxSizeMB <= 0 {
		return errors.New("log.max_size_mb must be positive when log.file is set")
	}
	if cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		return errors.New("log.max_backups and log.max_age_days must not be negative")
	}
	return nil
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
