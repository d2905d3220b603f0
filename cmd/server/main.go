package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/honeycarbs/zighang-ingest/internal/config"
	"github.com/honeycarbs/zighang-ingest/internal/scheduler"
	"github.com/honeycarbs/zighang-ingest/internal/server"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
	"github.com/honeycarbs/zighang-ingest/pkg/shutdown"
)

func main() {
	cfg, cfgErr := config.Load()
	var missing *config.MissingError
	if cfgErr != nil && !errors.As(cfgErr, &missing) {
		log.Fatalf("failed to load config: %v", cfgErr)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	res, cleanup, initErr := server.Setup(context.Background(), cfg, cfgErr, logger)
	defer cleanup()

	srv := server.NewServer(logger, cfg, res, initErr)
	stoppables := []shutdown.Stoppable{srv}

	if cfg.Ingest.Schedule != "" {
		if initErr != nil {
			logger.Warn("scheduler not started: resources unavailable", "schedule", cfg.Ingest.Schedule)
		} else {
			sched := scheduler.New(res.Job, logger)
			if err := sched.Start(cfg.Ingest.Schedule); err != nil {
				logger.Error("failed to start scheduler", "err", err)
				os.Exit(1)
			}
			stoppables = append(stoppables, sched)
		}
	}

	done := make(chan struct{})
	go func() {
		shutdown.Graceful(
			[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
			10*time.Second,
			logger,
			stoppables...,
		)
		close(done)
	}()

	logger.Info("ingestion server initialized and starting", "addr", net.JoinHostPort(cfg.Host, cfg.Port))

	if err := srv.Run(); err != nil {
		logger.Error("HTTP server exited with error", "err", err)
		return
	}

	<-done
	logger.Info("ingestion server stopped")
}
