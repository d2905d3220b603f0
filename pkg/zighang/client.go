package zighang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.zighang.com/api/recruitments/v3"
	defaultUserAgent = "zighang-ingest/1.0"
	defaultPageSize  = 100
	defaultTimeout   = 30 * time.Second

	// DefaultWindowStart is the fixed lower bound of the posting date filter
	DefaultWindowStart = "2026-01-01T00:00"

	minuteLayout = "2006-01-02T15:04"
)

// ErrInvalidEnvelope is wrapped by APIError when the response body is not the expected envelope
var ErrInvalidEnvelope = errors.New("invalid response envelope")

// APIError describes a failed page request. It covers transport failures,
// non-2xx statuses, success=false envelopes and undecodable bodies.
type APIError struct {
	Page       int
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("zighang: ")
	b.WriteString(e.Message)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (code %s)", e.Code)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewClient instantiates a Zighang API client
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("zighang: parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		pageSize:   pageSize,
	}, nil
}

// PageSize reports the page size sent with every request
func (c *Client) PageSize() int {
	return c.pageSize
}

// FetchPage requests a single 0-based page. It never retries.
func (c *Client) FetchPage(ctx context.Context, page int, window Window) (*Page, error) {
	if c == nil {
		return nil, fmt.Errorf("zighang: client is nil")
	}

	u, err := c.buildPageURL(page, window)
	if err != nil {
		return nil, &APIError{Page: page, Message: "build url", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &APIError{Page: page, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Page: page, Message: "request failed", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := "unexpected status"
		if excerpt := strings.TrimSpace(string(body)); excerpt != "" {
			msg += ": " + excerpt
		}
		return nil, &APIError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	var payload envelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &APIError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Message:    "decode response",
			Err:        errors.Join(ErrInvalidEnvelope, err),
		}
	}

	if !payload.Success {
		return nil, &APIError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Code:       payload.Code,
			Message:    "API reported failure",
		}
	}

	if payload.Data == nil || payload.Data.Content == nil {
		return nil, &APIError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Code:       payload.Code,
			Message:    "missing data.content",
			Err:        ErrInvalidEnvelope,
		}
	}

	return &Page{
		Index:         payload.Data.Page,
		Size:          payload.Data.Size,
		TotalElements: payload.Data.TotalElements,
		TotalPages:    payload.Data.TotalPages,
		Last:          payload.Data.Last,
		Recruitments:  payload.Data.Content,
	}, nil
}

func (c *Client) buildPageURL(page int, window Window) (string, error) {
	if page < 0 {
		return "", fmt.Errorf("page must be >= 0 (got %d)", page)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	start := window.Start
	if start == "" {
		start = DefaultWindowStart
	}
	if window.End == "" {
		return "", fmt.Errorf("window end is required")
	}

	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("size", strconv.Itoa(c.pageSize))
	values.Set("careerMin", "0")
	values.Set("careerMax", "0")
	values.Set("startDate", start)
	values.Set("endDate", window.End)
	values.Set("sortCondition", "VIEWS")
	values.Set("orderCondition", "DESC")

	u.RawQuery = values.Encode()
	return u.String(), nil
}
