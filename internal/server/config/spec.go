package config

import "time"

// ServerConfig is the root configuration for admingate-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the authentication gate listener.
type ServerSection struct {
	// Addr is the TCP bind address for the gate protocol.
	Addr string `koanf:"addr"`

	// HandshakeTimeout bounds the window between accept and a
	// completed credential exchange.
	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`

	// ReadTimeout bounds reading an authorized frame body once its
	// length prefix has arrived. WriteTimeout bounds the public-key
	// frame write at the start of the handshake.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout closes authorized connections with no traffic.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// MaxFrameSize caps the length prefix of an inbound frame.
	MaxFrameSize int `koanf:"max_frame_size"`

	// MaxMalformed is the number of malformed credential frames a
	// connection may send before it is closed.
	MaxMalformed int `koanf:"max_malformed"`

	// KeyBits is the RSA modulus size for per-connection keypairs.
	KeyBits int `koanf:"key_bits"`

	// RatePerSecond and RateBurst bound per-address connection
	// attempts. Zero disables rate limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`
	RateBurst     int     `koanf:"rate_burst"`
}

// StorageSection configures credential persistence. An empty DataDir
// keeps the registry purely in memory.
type StorageSection struct {
	DataDir string `koanf:"data_dir"`

	// EncryptionKey, when set, must be 64 hex characters (a 32-byte
	// key) and enables encryption of stored records.
	EncryptionKey string `koanf:"encryption_key"`
}

// MetricsSection configures the Prometheus/health HTTP endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging output.
type LogSection struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "text".
	Format string `koanf:"format"`
}
