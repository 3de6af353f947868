package config

import "time"

// ServerConfig is the root configuration for kvstore-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	KV   KVConfig   `koanf:"kv"`
	HTTP HTTPConfig `koanf:"http"`
}

// KVConfig configures the key-value protocol listener and its tick loop.
type KVConfig struct {
	Addr string `koanf:"addr"`

	// TickInterval is the pause between two scheduling ticks.
	TickInterval time.Duration `koanf:"tick_interval"`

	// IdleTimeout closes connections that wait for a request longer than
	// this. Zero disables idle eviction.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	ReadBufferSize int `koanf:"read_buffer_size"`
	MaxRequestSize int `koanf:"max_request_size"`

	// RateLimit is the maximum number of commands per second per
	// connection. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
}

// HTTPConfig configures the health and metrics listener.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// File enables rotating file output when set.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}
