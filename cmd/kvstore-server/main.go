package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/levkk/kvstore/internal/infra/buildinfo"
	"github.com/levkk/kvstore/internal/infra/confloader"
	"github.com/levkk/kvstore/internal/infra/shutdown"
	"github.com/levkk/kvstore/internal/server/config"
	"github.com/levkk/kvstore/internal/server/httpserver"
	"github.com/levkk/kvstore/internal/server/kvserver"
	"github.com/levkk/kvstore/internal/storage/memory"
	"github.com/levkk/kvstore/internal/telemetry/logger"
	"github.com/levkk/kvstore/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:    "kvstore-server",
		Usage:   "in-memory key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Key-value listen address (overrides server.kv.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides log.level)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	overrides := map[string]any{
		"server.kv.addr": c.String("addr"),
		"log.level":      c.String("log-level"),
	}

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(config.ToLoggerConfig(&cfg.Log))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting kvstore-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)

	store := memory.New()
	metrics := metric.Global()
	metrics.RegisterKeyCount(store.Len)

	h := shutdown.NewHandler(shutdownTimeout)

	kvSrv := kvserver.New(config.ToKVServerConfig(&cfg.Server.KV), store, log.Slog(), metrics)
	kvDone := make(chan error, 1)
	go func() {
		err := kvSrv.Run(h.Context())
		if err != nil {
			log.Error("kv server stopped", "error", err)
			h.Trigger()
		}
		kvDone <- err
	}()

	h.OnShutdown(func(ctx context.Context) error {
		log.Info("waiting for kv server to stop")
		select {
		case err := <-kvDone:
			return err
		case <-ctx.Done():
			return fmt.Errorf("kv server: %w", ctx.Err())
		}
	})

	if cfg.Server.HTTP.Enabled {
		httpSrv, err := startHTTP(cfg, log, metrics, kvSrv, store, h)
		if err != nil {
			h.Trigger()
			_ = h.Wait()
			return err
		}
		h.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down HTTP server")
			return httpSrv.Shutdown(ctx)
		})
	}

	if configFile != "" {
		w, err := watchConfig(configFile, overrides, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			h.OnShutdown(func(context.Context) error {
				return w.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := h.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file, environment and flags.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// startHTTP binds the observability listener and serves it in the background.
func startHTTP(cfg *config.ServerConfig, log logger.Logger, metrics *metric.Registry,
	kvSrv *kvserver.Server, store *memory.Store, h *shutdown.Handler) (*httpserver.Server, error) {
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Logger:  log.Slog(),
		Metrics: metrics.Handler(),
		Ready:   kvSrv.Ready,
		Keys:    store.Len,
	})

	ln, err := net.Listen("tcp", cfg.Server.HTTP.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err)
	}

	srv := httpserver.New(cfg.Server.HTTP.Addr, router)
	go func() {
		log.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			h.Trigger()
		}
	}()

	return srv, nil
}

// watchConfig reloads the file on change and applies log.level.
func watchConfig(configFile string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(configFile); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		cfg, err := loadConfig(path, overrides)
		if err != nil {
			log.Warn("config reload rejected", "file", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()

	return w, nil
}
