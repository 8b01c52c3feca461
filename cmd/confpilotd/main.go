package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"confpilot/internal/config"
	"confpilot/internal/logging"
	"confpilot/internal/server"
)

const version = "0.3.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger = logger.With(logging.String("instance", uuid.NewString()[:8]))

	lock := flock.New(cfg.Paths.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire daemon lock", logging.Error(err))
		return
	}
	if !locked {
		logger.Error("another confpilotd instance holds the lock",
			logging.String("lock_file", cfg.Paths.LockFile))
		return
	}
	defer lock.Unlock() //nolint:errcheck

	deps, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap services", logging.Error(err))
		return
	}
	defer cleanup()

	srv := server.New(deps)
	if srv == nil {
		logger.Error("no api bind address configured")
		return
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("start api server", logging.Error(err))
		return
	}
	defer srv.Stop()

	<-ctx.Done()
	logger.Info("confpilotd shutting down")
}
