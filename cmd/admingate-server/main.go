// Package main provides the entry point for admingate-server, the
// administrator authentication gateway daemon.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tehnewb/admingate/internal/core/service"
	"github.com/tehnewb/admingate/internal/infra/buildinfo"
	"github.com/tehnewb/admingate/internal/infra/confloader"
	"github.com/tehnewb/admingate/internal/infra/shutdown"
	"github.com/tehnewb/admingate/internal/server/config"
	"github.com/tehnewb/admingate/internal/server/gateserver"
	"github.com/tehnewb/admingate/internal/server/httpserver"
	"github.com/tehnewb/admingate/internal/storage/adminstore"
	"github.com/tehnewb/admingate/internal/telemetry/logger"
	"github.com/tehnewb/admingate/internal/telemetry/metric"
	"github.com/tehnewb/admingate/pkg/crypto/keyseal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		bootstrap   = flag.String("bootstrap", "", "Create an administrator record for this username, print its token, and exit")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("admingate-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	log.Info("starting admingate-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	ctx := context.Background()

	store, err := openStore(cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var storeIface service.Store
	if store != nil {
		storeIface = store
	}
	registry, err := service.NewRegistry(ctx, storeIface, log)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}

	if *bootstrap != "" {
		tok, err := registry.Create(ctx, *bootstrap)
		if err != nil {
			return fmt.Errorf("bootstrap %q: %w", *bootstrap, err)
		}
		fmt.Printf("%s\n", tok)
		if store != nil {
			return store.Close()
		}
		return nil
	}

	gateCfg := &gateserver.Config{
		Addr:             cfg.Server.Addr,
		HandshakeTimeout: cfg.Server.HandshakeTimeout,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
		MaxFrameSize:     cfg.Server.MaxFrameSize,
		MaxMalformed:     cfg.Server.MaxMalformed,
		RatePerSecond:    cfg.Server.RatePerSecond,
		RateBurst:        cfg.Server.RateBurst,
	}
	metrics := metric.NewRegistry()
	gate := gateserver.New(gateCfg, registry, keyseal.NewRSAProvider(cfg.Server.KeyBits), metrics, log)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	if err := gate.Start(ctx); err != nil {
		return fmt.Errorf("start gate server: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down gate server")
		return gate.Shutdown(ctx)
	})

	if store != nil {
		shutdownHandler.OnShutdown(func(context.Context) error {
			log.Info("closing admin store")
			return store.Close()
		})
	}

	if cfg.Metrics.Enabled {
		httpSrv := httpserver.New(cfg.Metrics.Addr, metrics)
		go func() {
			log.Info("metrics server listening", "addr", cfg.Metrics.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "error", err)
			}
		}()
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return httpSrv.Shutdown(ctx)
		})
	}

	if *configFile != "" {
		stopWatch, err := watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return stopWatch()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig merges defaults, the optional YAML file, and the
// environment, then validates the result.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore opens the Badger store, or returns nil when persistence
// is disabled.
func openStore(cfg *config.ServerConfig, log *slog.Logger) (*adminstore.Store, error) {
	if cfg.Storage.DataDir == "" {
		log.Info("persistence disabled, registry is in-memory only")
		return nil, nil
	}

	storeCfg := adminstore.Config{
		Dir:        cfg.Storage.DataDir,
		SyncWrites: true,
	}
	if cfg.Storage.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.Storage.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("decode encryption key: %w", err)
		}
		storeCfg.EncryptionKey = key
	}
	return adminstore.Open(storeCfg, log)
}

// watchConfig reloads the log level when the config file changes.
// Other settings require a restart.
func watchConfig(path string, log *slog.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(log)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(changed string) {
		fresh, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload failed", "file", changed, "error", err)
			return
		}
		if fresh.Log.Level != logger.Level() {
			logger.SetLevel(fresh.Log.Level)
			log.Info("log level changed", "level", fresh.Log.Level)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
