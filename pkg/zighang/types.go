package zighang

import (
	"net/http"
	"time"
)

// Config defines Zighang API client settings
type Config struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	PageSize   int
}

// Client queries the Zighang recruitments API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	pageSize   int
}

// Window is the date range sent with every page request of a run.
// End must stay fixed for the whole run so the remote ordering is stable.
type Window struct {
	Start string
	End   string
}

// Page is one decoded page of recruitments
type Page struct {
	Index         int
	Size          int
	TotalElements int
	TotalPages    int
	Last          bool
	Recruitments  []Recruitment
}

type envelope struct {
	Success bool          `json:"success"`
	Code    string        `json:"code"`
	Data    *envelopeData `json:"data"`
}

type envelopeData struct {
	Content       []Recruitment `json:"content"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int           `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	Last          bool          `json:"last"`
}

// Recruitment is a listing as returned by the API. Pointer and slice fields are nil
// when the payload omits them or sends null.
type Recruitment struct {
	ID            string   `json:"id"`
	Affiliate     *string  `json:"affiliate"`
	Title         string   `json:"title"`
	DeadlineType  *string  `json:"deadlineType"`
	EndDate       *string  `json:"endDate"`
	CreatedAt     *string  `json:"createdAt"`
	CareerMin     *int     `json:"careerMin"`
	CareerMax     *int     `json:"careerMax"`
	Company       *Company `json:"company"`
	Regions       []string `json:"regions"`
	EmployeeTypes []string `json:"employeeTypes"`
	Educations    []string `json:"educations"`
	DepthOnes     []string `json:"depthOnes"`
	DepthTwos     []string `json:"depthTwos"`
	DepthThrees   []string `json:"depthThrees"`
	Views         *int     `json:"views"`
	Keywords      []string `json:"keywords"`
	Tags          []string `json:"tags"`
	Badges        []string `json:"badges"`
}

// Company is the nested company summary of a recruitment
type Company struct {
	ID    *string `json:"id"`
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// WindowEnd formats t the way the API expects the endDate parameter:
// UTC, truncated to the minute.
func WindowEnd(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format(minuteLayout)
}
