package config

import "time"

// Default configuration values.
const (
	DefaultAddr             = "127.0.0.1:6343"
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultReadTimeout      = 60 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultIdleTimeout      = 5 * time.Minute
	DefaultMaxFrameSize     = 64 * 1024
	DefaultMaxMalformed     = 3
	DefaultKeyBits          = 2048

	DefaultMetricsAddr = "127.0.0.1:6380"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:             DefaultAddr,
			HandshakeTimeout: DefaultHandshakeTimeout,
			ReadTimeout:      DefaultReadTimeout,
			WriteTimeout:     DefaultWriteTimeout,
			IdleTimeout:      DefaultIdleTimeout,
			MaxFrameSize:     DefaultMaxFrameSize,
			MaxMalformed:     DefaultMaxMalformed,
			KeyBits:          DefaultKeyBits,
			RatePerSecond:    0,
			RateBurst:        0,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
