package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

type countingRunner struct {
	calls atomic.Int32
}

func (r *countingRunner) Run(context.Context) (domain.RunResult, error) {
	r.calls.Add(1)
	return domain.RunResult{PagesProcessed: 1}, nil
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, logging.NewNop())

	require.NoError(t, s.Start("* * * * * *"))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RejectsInvalidSchedule(t *testing.T) {
	s := New(&countingRunner{}, logging.NewNop())

	err := s.Start("every now and then")
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestScheduler_RequiresSecondsField(t *testing.T) {
	s := New(&countingRunner{}, logging.NewNop())

	assert.Error(t, s.Start("*/5 * * * *"))
}

func TestScheduler_ShutdownWithoutTicks(t *testing.T) {
	s := New(&countingRunner{}, logging.NewNop())
	require.NoError(t, s.Start("0 0 0 1 1 *"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
