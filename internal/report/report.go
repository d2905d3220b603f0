package report

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

// SuccessMessage is the message of every completed or aborted run
const SuccessMessage = "Scrape complete"

// Success is the response body of a run that produced a result
type Success struct {
	Message        string   `json:"message"`
	TotalElements  int      `json:"totalElements"`
	TotalPages     int      `json:"totalPages"`
	PagesProcessed int      `json:"pagesProcessed"`
	TotalUpserted  int64    `json:"totalUpserted"`
	Errors         []string `json:"errors,omitempty"`
	ElapsedSeconds float64  `json:"elapsedSeconds"`
}

// Failure is the response body of an invocation that produced no result
type Failure struct {
	Error string `json:"error"`
}

// FromResult builds the success body; elapsed time is rounded to one decimal
func FromResult(result domain.RunResult) Success {
	var errs []string
	if len(result.Errors) > 0 {
		errs = result.Errors
	}

	return Success{
		Message:        SuccessMessage,
		TotalElements:  result.TotalElements,
		TotalPages:     result.TotalPages,
		PagesProcessed: result.PagesProcessed,
		TotalUpserted:  result.TotalUpserted,
		Errors:         errs,
		ElapsedSeconds: math.Round(result.Elapsed.Seconds()*10) / 10,
	}
}

// FromError builds the failure body
func FromError(err error) Failure {
	return Failure{Error: err.Error()}
}

// Body picks the success or failure body for the outcome of one run
func Body(result domain.RunResult, err error) any {
	if err != nil {
		return FromError(err)
	}
	return FromResult(result)
}

// WriteJSON writes 200 with the success body, or 500 with the failure body
func WriteJSON(w http.ResponseWriter, result domain.RunResult, err error) {
	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body(result, err))
}
