package runlog

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

// DefaultTab is the sheet tab run rows are appended to
const DefaultTab = "runs"

// Recorder stores a summary of each finished run
type Recorder interface {
	Record(ctx context.Context, result domain.RunResult, runErr error) error
}

// Nop discards every run
type Nop struct{}

// Record implements Recorder
func (Nop) Record(context.Context, domain.RunResult, error) error { return nil }

type appender interface {
	AppendRows(ctx context.Context, spreadsheetID, tab string, rows [][]any) error
}

// SheetsRecorder appends one row per run to a spreadsheet tab
type SheetsRecorder struct {
	client        appender
	spreadsheetID string
	tab           string
	clock         func() time.Time
}

// NewSheetsRecorder creates a SheetsRecorder; an empty tab means DefaultTab
func NewSheetsRecorder(client appender, spreadsheetID, tab string) *SheetsRecorder {
	if tab == "" {
		tab = DefaultTab
	}
	return &SheetsRecorder{
		client:        client,
		spreadsheetID: spreadsheetID,
		tab:           tab,
		clock:         time.Now,
	}
}

// Record implements Recorder
func (r *SheetsRecorder) Record(ctx context.Context, result domain.RunResult, runErr error) error {
	return r.client.AppendRows(ctx, r.spreadsheetID, r.tab, [][]any{Row(result, runErr, r.clock())})
}

// Row renders a run as spreadsheet cells:
// run id, started at, pages processed, total upserted, total elements,
// total pages, error count, aborted, elapsed seconds, failure.
// A failed invocation has no result, so its id and start time fall back to now.
func Row(result domain.RunResult, runErr error, now time.Time) []any {
	runID := ""
	startedAt := now
	if runErr == nil {
		runID = result.RunID.String()
		startedAt = result.StartedAt
	}

	failure := ""
	if runErr != nil {
		failure = runErr.Error()
	}

	return []any{
		runID,
		startedAt.UTC().Format(time.RFC3339),
		result.PagesProcessed,
		strconv.FormatInt(result.TotalUpserted, 10),
		result.TotalElements,
		result.TotalPages,
		len(result.Errors),
		result.Aborted,
		math.Round(result.Elapsed.Seconds()*10) / 10,
		failure,
	}
}
