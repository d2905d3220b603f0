package ingest

import (
	"context"
	"time"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"
	"github.com/honeycarbs/zighang-ingest/internal/runlog"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

// Job is one externally triggered ingestion run with its run-log bookkeeping.
// Every trigger (HTTP, MCP tool, cron, CLI) goes through Job.Run.
type Job struct {
	svc      listing.Service
	recorder runlog.Recorder
	timeout  time.Duration
	logger   *logging.Logger
}

// NewJob wires a Job; a nil recorder disables the run log and a zero timeout disables the deadline
func NewJob(svc listing.Service, recorder runlog.Recorder, timeout time.Duration, logger *logging.Logger) *Job {
	if recorder == nil {
		recorder = runlog.Nop{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Job{
		svc:      svc,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run executes a single ingestion. Run-log failures are logged and never change the outcome.
func (j *Job) Run(ctx context.Context) (domain.RunResult, error) {
	runCtx := ctx
	if j.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	result, err := j.svc.Run(runCtx)
	if err != nil {
		j.logger.Error("ingestion run failed", "err", err)
	}

	if rerr := j.recorder.Record(context.WithoutCancel(ctx), result, err); rerr != nil {
		j.logger.Warn("failed to record run", "err", rerr)
	}

	return result, err
}
