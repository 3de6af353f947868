package config

import "time"

// Default configuration values.
const (
	DefaultKVAddr         = "127.0.0.1:7379"
	DefaultTickInterval   = time.Millisecond
	DefaultReadBufferSize = 4096
	DefaultMaxRequestSize = 64 << 10

	DefaultHTTPAddr = "127.0.0.1:7380"

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			KV: KVConfig{
				Addr:           DefaultKVAddr,
				TickInterval:   DefaultTickInterval,
				ReadBufferSize: DefaultReadBufferSize,
				MaxRequestSize: DefaultMaxRequestSize,
			},
			HTTP: HTTPConfig{
				Enabled: false,
				Addr:    DefaultHTTPAddr,
			},
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}
