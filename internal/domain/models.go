package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunID uniquely identifies one ingestion run
type RunID = uuid.UUID

// WindowStart is the fixed lower bound of the listing date filter
const WindowStart = "2026-01-01T00:00"

// Company is the optional company summary attached to a listing
type Company struct {
	ID    *string
	Name  *string
	Image *string
}

// SourceRecord is one listing as returned by the remote API.
// A nil pointer or nil slice means the field was absent.
type SourceRecord struct {
	ID            string
	Title         string
	Affiliate     *string
	DeadlineType  *string
	EndDate       *string
	CreatedAt     *string
	CareerMin     *int
	CareerMax     *int
	Company       *Company
	Regions       []string
	EmployeeTypes []string
	Educations    []string
	DepthOnes     []string
	DepthTwos     []string
	DepthThrees   []string
	Keywords      []string
	Tags          []string
	Badges        []string
	Views         *int
}

// Page is one page of source records plus pagination metadata
type Page struct {
	Index         int
	Size          int
	TotalElements int
	TotalPages    int
	Last          bool
	Records       []SourceRecord
}

// QueryWindow is the date range used for every page of a single run
type QueryWindow struct {
	Start string
	End   time.Time
}

// NewQueryWindow fixes the window end at now, truncated to the minute
func NewQueryWindow(now time.Time) QueryWindow {
	return QueryWindow{
		Start: WindowStart,
		End:   now.UTC().Truncate(time.Minute),
	}
}

// Listing is the persisted, null-safe projection of a SourceRecord.
// ID is the primary key; list fields are never nil.
type Listing struct {
	ID            string
	Affiliate     *string
	Title         string
	DeadlineType  *string
	EndDate       *string
	CreatedAt     *string
	CareerMin     int
	CareerMax     int
	CompanyID     *string
	CompanyName   *string
	CompanyImage  *string
	Regions       []string
	EmployeeTypes []string
	Educations    []string
	DepthOnes     []string
	DepthTwos     []string
	DepthThrees   []string
	Keywords      []string
	Tags          []string
	Badges        []string
	Views         int
	ScrapedAt     time.Time
}

// RunResult carries the statistics of one run
type RunResult struct {
	RunID          RunID
	StartedAt      time.Time
	PagesProcessed int
	TotalUpserted  int64
	TotalElements  int
	TotalPages     int
	Errors         []string
	Aborted        bool
	Elapsed        time.Duration
}
