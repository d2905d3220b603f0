package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Run(ctx context.Context) (domain.RunResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RunResult), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, result domain.RunResult, runErr error) error {
	args := m.Called(ctx, result, runErr)
	return args.Error(0)
}

func TestJobRun_RecordsSuccessfulRun(t *testing.T) {
	result := domain.RunResult{TotalPages: 2, PagesProcessed: 2, TotalUpserted: 150}

	svc := &mockService{}
	svc.On("Run", mock.Anything).Return(result, nil).Once()
	recorder := &mockRecorder{}
	recorder.On("Record", mock.Anything, result, nil).Return(nil).Once()

	got, err := NewJob(svc, recorder, 0, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, result, got)
	svc.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestJobRun_RecordsFailedRun(t *testing.T) {
	runErr := errors.New("fetch first page: unexpected status 503")

	svc := &mockService{}
	svc.On("Run", mock.Anything).Return(domain.RunResult{}, runErr).Once()
	recorder := &mockRecorder{}
	recorder.On("Record", mock.Anything, domain.RunResult{}, runErr).Return(nil).Once()

	_, err := NewJob(svc, recorder, 0, nil).Run(context.Background())

	assert.ErrorIs(t, err, runErr)
	recorder.AssertExpectations(t)
}

func TestJobRun_RecorderErrorDoesNotFailRun(t *testing.T) {
	result := domain.RunResult{TotalPages: 1, PagesProcessed: 1}

	svc := &mockService{}
	svc.On("Run", mock.Anything).Return(result, nil)
	recorder := &mockRecorder{}
	recorder.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("sheets down"))

	got, err := NewJob(svc, recorder, 0, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestJobRun_AppliesTimeout(t *testing.T) {
	svc := &mockService{}
	svc.On("Run", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Minute
	})).Return(domain.RunResult{}, nil).Once()

	_, err := NewJob(svc, nil, time.Minute, nil).Run(context.Background())

	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestJobRun_NoTimeoutByDefault(t *testing.T) {
	svc := &mockService{}
	svc.On("Run", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return !ok
	})).Return(domain.RunResult{}, nil).Once()

	_, err := NewJob(svc, nil, 0, nil).Run(context.Background())

	require.NoError(t, err)
	svc.AssertExpectations(t)
}
