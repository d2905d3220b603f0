package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

// Runner executes one ingestion
type Runner interface {
	Run(ctx context.Context) (domain.RunResult, error)
}

// Scheduler triggers an ingestion on a cron schedule (seconds field included).
// Ticks are independent; a slow run does not delay or skip the next one.
type Scheduler struct {
	runner Runner
	cron   *cron.Cron
	logger *logging.Logger
}

// New creates a Scheduler for runner
func New(runner Runner, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		cron:   cron.New(cron.WithSeconds(), cron.WithLogger(cron.PrintfLogger(logger))),
		logger: logger,
	}
}

// Start registers the schedule and starts the cron loop
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info("ingestion scheduler started", "schedule", schedule)
	return nil
}

// Shutdown stops new ticks and waits for a running ingestion until ctx is done
func (s *Scheduler) Shutdown(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("ingestion scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: waiting for running ingestion: %w", ctx.Err())
	}
}

func (s *Scheduler) tick() {
	s.logger.Info("scheduled ingestion starting")

	result, err := s.runner.Run(context.Background())
	if err != nil {
		s.logger.Error("scheduled ingestion failed", "err", err)
		return
	}

	s.logger.Info("scheduled ingestion completed",
		"pages_processed", result.PagesProcessed,
		"total_upserted", result.TotalUpserted,
		"errors", len(result.Errors),
		"aborted", result.Aborted,
	)
}
