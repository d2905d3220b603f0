package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/honeycarbs/zighang-ingest/internal/config"
	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/report"
	"github.com/honeycarbs/zighang-ingest/internal/server"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

// ingest runs one ingestion, prints the report JSON and exits 1 on failure
func main() {
	os.Exit(run())
}

func run() int {
	cfg, cfgErr := config.Load()
	var missing *config.MissingError
	if cfgErr != nil && !errors.As(cfgErr, &missing) {
		log.Printf("failed to load config: %v", cfgErr)
		return 1
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, cleanup, err := server.Setup(ctx, cfg, cfgErr, logger)
	defer cleanup()

	var result domain.RunResult
	if err == nil {
		result, err = res.Job.Run(ctx)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report.Body(result, err)); encErr != nil {
		logger.Error("failed to write report", "err", encErr)
		return 1
	}

	if err != nil {
		return 1
	}
	return 0
}
