// Package main provides the entry point for leaderboard-server.
//
// leaderboard-server keeps the player registry for the ClickerMSU
// game: it takes commands over a Telegram chat, ranks players, and
// backs the registry up as a document pinned to an anchor message in
// the same chat.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/clickermsu/leaderboard-go/internal/backup"
	"github.com/clickermsu/leaderboard-go/internal/bot"
	"github.com/clickermsu/leaderboard-go/internal/channel/telegram"
	"github.com/clickermsu/leaderboard-go/internal/core/domain"
	"github.com/clickermsu/leaderboard-go/internal/core/service"
	"github.com/clickermsu/leaderboard-go/internal/infra/buildinfo"
	"github.com/clickermsu/leaderboard-go/internal/infra/confloader"
	"github.com/clickermsu/leaderboard-go/internal/infra/shutdown"
	"github.com/clickermsu/leaderboard-go/internal/server/config"
	"github.com/clickermsu/leaderboard-go/internal/server/opsserver"
	"github.com/clickermsu/leaderboard-go/internal/storage"
	"github.com/clickermsu/leaderboard-go/internal/storage/snapshot"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/metric"
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
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("leaderboard-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting leaderboard-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)

	metrics := metric.NewRegistry()

	engine, err := storage.Open(storage.Config{
		Dir:        cfg.Storage.DataDir,
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
		Logger:     log,
		Metrics:    metrics,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	var sealer *snapshot.Sealer
	if cfg.Sync.SealPassphrase != "" {
		sealer, err = snapshot.NewSealer(cfg.Sync.SealPassphrase)
		if err != nil {
			return fmt.Errorf("init sealer: %w", err)
		}
	}

	tg, err := telegram.New(telegram.Config{
		Token:       cfg.Bot.Token,
		PollTimeout: cfg.Bot.PollTimeout,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("init telegram: %w", err)
	}

	mgr, err := backup.NewManager(backup.Config{
		Blob:     tg,
		Registry: engine,
		Pointer:  cfg.Sync.Pointer,
		Sealer:   sealer,
		PushRate: rate.Limit(cfg.Sync.PushRate),
		BlobName: cfg.Sync.BlobName,
		Logger:   log,
		Metrics:  metrics,
	})
	if err != nil {
		return fmt.Errorf("init backup manager: %w", err)
	}

	svc := service.NewRegistryService(engine, mgr, log)

	ctx := context.Background()
	if cfg.Sync.PullOnStart {
		if err := svc.Restore(ctx); err != nil {
			// A fresh deployment has no pointer yet; anything else is
			// a real problem and the operator should know before the
			// bot starts answering.
			if !errors.Is(err, domain.ErrPointerUnset) {
				return fmt.Errorf("restore from channel: %w", err)
			}
			log.Warn("no snapshot pointer configured, starting empty")
		}
	}

	dispatcher := bot.NewDispatcher(svc, tg, log, metrics)
	tg.Attach(ctx, dispatcher)

	var ready atomic.Bool

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(context.Context) error {
		log.Info("stopping telegram poller")
		tg.Stop()
		return nil
	})
	shutdownHandler.OnShutdown(func(context.Context) error {
		log.Info("closing storage engine")
		return engine.Close()
	})

	if cfg.Ops.Enabled {
		opsHandler := opsserver.NewRouter(&opsserver.RouterConfig{
			Metrics: metrics,
			Ready:   ready.Load,
			Logger:  log,
		})
		ops := opsserver.New(cfg.Ops.Addr, opsHandler)

		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down ops server")
			return ops.Shutdown(ctx)
		})

		go func() {
			log.Info("ops server listening", "addr", cfg.Ops.Addr)
			if err := ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("ops server error", "error", err)
			}
		}()
	}

	if *configFile != "" {
		stopWatch, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return stopWatch()
			})
		}
	}

	go tg.Start()
	ready.Store(true)

	log.Info("bot started", "registry_size", engine.Len())
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
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

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// watchLogLevel re-reads log.level from the config file on change so
// operators can bump verbosity without a restart.
func watchLogLevel(configFile string, log logger.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(configFile); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		l := confloader.NewLoader(confloader.WithConfigFile(configFile))
		var cfg config.ServerConfig
		if err := l.Load(&cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			log.Info("log level changed", "level", cfg.Log.Level)
			logger.SetLevel(cfg.Log.Level)
		}
	})
	w.StartAsync()

	return w.Stop, nil
}
