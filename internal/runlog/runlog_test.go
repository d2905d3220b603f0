package runlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

type fakeAppender struct {
	spreadsheetID string
	tab           string
	rows          [][]any
	err           error
}

func (f *fakeAppender) AppendRows(_ context.Context, spreadsheetID, tab string, rows [][]any) error {
	f.spreadsheetID = spreadsheetID
	f.tab = tab
	f.rows = append(f.rows, rows...)
	return f.err
}

func TestSheetsRecorder_AppendsOneRow(t *testing.T) {
	fake := &fakeAppender{}
	rec := NewSheetsRecorder(fake, "sheet-1", "")

	id := uuid.MustParse("6a8f3a1e-4a5e-4d43-9d0b-1f2a3b4c5d6e")
	started := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)

	err := rec.Record(context.Background(), domain.RunResult{
		RunID:          id,
		StartedAt:      started,
		PagesProcessed: 4,
		TotalUpserted:  380,
		TotalElements:  400,
		TotalPages:     4,
		Errors:         []string{"page 3: boom"},
		Elapsed:        3200 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", fake.spreadsheetID)
	assert.Equal(t, DefaultTab, fake.tab)
	require.Len(t, fake.rows, 1)
	assert.Equal(t, []any{
		id.String(), "2026-05-01T08:30:00Z", 4, "380", 400, 4, 1, false, 3.2, "",
	}, fake.rows[0])
}

func TestSheetsRecorder_FailedRun(t *testing.T) {
	fake := &fakeAppender{}
	rec := NewSheetsRecorder(fake, "sheet-1", "ingest")
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rec.clock = func() time.Time { return now }

	err := rec.Record(context.Background(), domain.RunResult{}, errors.New("fetch first page: timeout"))
	require.NoError(t, err)

	assert.Equal(t, "ingest", fake.tab)
	row := fake.rows[0]
	assert.Equal(t, "", row[0])
	assert.Equal(t, "2026-05-01T09:00:00Z", row[1])
	assert.Equal(t, "fetch first page: timeout", row[9])
}

func TestSheetsRecorder_PropagatesAppendError(t *testing.T) {
	fake := &fakeAppender{err: errors.New("quota exceeded")}
	rec := NewSheetsRecorder(fake, "sheet-1", "")

	err := rec.Record(context.Background(), domain.RunResult{}, nil)
	assert.EqualError(t, err, "quota exceeded")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Record(context.Background(), domain.RunResult{}, errors.New("x")))
}
