package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
)

// Verify validates the configuration, creating the data directory
// when persistence is enabled.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr %q: %w", cfg.Addr, err)
	}
	if cfg.HandshakeTimeout <= 0 {
		return errors.New("server.handshake_timeout must be positive")
	}
	if cfg.MaxFrameSize < 512 {
		return errors.New("server.max_frame_size must be at least 512")
	}
	if cfg.MaxMalformed < 1 {
		return errors.New("server.max_malformed must be at least 1")
	}
	if cfg.KeyBits < 2048 {
		return errors.New("server.key_bits must be at least 2048")
	}
	if cfg.RatePerSecond < 0 || cfg.RateBurst < 0 {
		return errors.New("server rate limit values must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		if cfg.EncryptionKey != "" {
			return errors.New("storage.encryption_key set without storage.data_dir")
		}
		return nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	if cfg.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return errors.New("storage.encryption_key must be hex")
		}
		if len(key) != 32 {
			return errors.New("storage.encryption_key must decode to 32 bytes")
		}
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr %q: %w", cfg.Addr, err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is not json or text", cfg.Format)
	}
	return nil
}
