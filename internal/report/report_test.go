package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

func TestFromResult(t *testing.T) {
	body := FromResult(domain.RunResult{
		TotalElements:  250,
		TotalPages:     3,
		PagesProcessed: 3,
		TotalUpserted:  250,
		Elapsed:        2345 * time.Millisecond,
	})

	assert.Equal(t, Success{
		Message:        "Scrape complete",
		TotalElements:  250,
		TotalPages:     3,
		PagesProcessed: 3,
		TotalUpserted:  250,
		ElapsedSeconds: 2.3,
	}, body)
}

func TestFromResult_RoundsElapsed(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0},
		{49 * time.Millisecond, 0},
		{50 * time.Millisecond, 0.1},
		{1960 * time.Millisecond, 2},
		{61 * time.Second, 61},
	}

	for _, tc := range cases {
		t.Run(tc.elapsed.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, FromResult(domain.RunResult{Elapsed: tc.elapsed}).ElapsedSeconds)
		})
	}
}

func TestSuccessJSON_OmitsEmptyErrors(t *testing.T) {
	raw, err := json.Marshal(FromResult(domain.RunResult{Errors: []string{}}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "errors")
	assert.Equal(t, "Scrape complete", decoded["message"])
	for _, key := range []string{"totalElements", "totalPages", "pagesProcessed", "totalUpserted", "elapsedSeconds"} {
		assert.Contains(t, decoded, key)
	}
}

func TestSuccessJSON_KeepsErrors(t *testing.T) {
	raw, err := json.Marshal(FromResult(domain.RunResult{Errors: []string{"page 2: boom"}}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"message": "Scrape complete",
		"totalElements": 0,
		"totalPages": 0,
		"pagesProcessed": 0,
		"totalUpserted": 0,
		"errors": ["page 2: boom"],
		"elapsedSeconds": 0
	}`, string(raw))
}

func TestWriteJSON_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSON(rec, domain.RunResult{TotalElements: 1, TotalPages: 1, PagesProcessed: 1, TotalUpserted: 1}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Success
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.TotalUpserted)
}

func TestWriteJSON_Failure(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSON(rec, domain.RunResult{TotalPages: 9}, errors.New("fetch first page: unexpected status 500"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"fetch first page: unexpected status 500"}`, rec.Body.String())
}
