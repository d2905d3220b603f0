package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/zighang-ingest/internal/config"
	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/server/tools"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

type stubRunner struct {
	result domain.RunResult
	err    error
	calls  atomic.Int32
}

func (s *stubRunner) Run(context.Context) (domain.RunResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

type stubReader struct {
	rows map[string]domain.Listing
}

func (s *stubReader) Get(_ context.Context, id string) (domain.Listing, error) {
	row, ok := s.rows[id]
	if !ok {
		return domain.Listing{}, errors.New("listing not found")
	}
	return row, nil
}

func (s *stubReader) Count(context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func newTestServer(t *testing.T, runner *stubRunner, reader *stubReader, initErr error) *httptest.Server {
	t.Helper()

	var r tools.Runner
	if runner != nil {
		r = runner
	}
	var lr tools.ListingReader
	if reader != nil {
		lr = reader
	}

	ts := httptest.NewServer(NewHandler(logging.NewNop(), r, lr, initErr))
	t.Cleanup(ts.Close)
	return ts
}

func TestRun_Success(t *testing.T) {
	runner := &stubRunner{result: domain.RunResult{
		TotalElements:  120,
		TotalPages:     2,
		PagesProcessed: 2,
		TotalUpserted:  120,
		Elapsed:        1500 * time.Millisecond,
	}}
	ts := newTestServer(t, runner, nil, nil)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req, err := http.NewRequest(method, ts.URL+"/run", nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, method)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.JSONEq(t, `{
			"message": "Scrape complete",
			"totalElements": 120,
			"totalPages": 2,
			"pagesProcessed": 2,
			"totalUpserted": 120,
			"elapsedSeconds": 1.5
		}`, string(body))
	}
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestRun_Failure(t *testing.T) {
	runner := &stubRunner{err: errors.New("fetch first page: unexpected status 502")}
	ts := newTestServer(t, runner, nil, nil)

	resp, err := http.Post(ts.URL+"/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "fetch first page: unexpected status 502"}, body)
}

func TestRun_InitErrorShortCircuits(t *testing.T) {
	runner := &stubRunner{}
	ts := newTestServer(t, runner, nil, errors.New("missing required environment variables: DATABASE_URL"))

	resp, err := http.Get(ts.URL + "/run")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"missing required environment variables: DATABASE_URL"}`, string(body))
	assert.Zero(t, runner.calls.Load())
}

func TestRun_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &stubRunner{}, nil, nil)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/run", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))
}

func TestHealthzAndMetrics(t *testing.T) {
	ts := newTestServer(t, &stubRunner{}, nil, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "zighang_ingest_")
}

func TestNewServer_NilResourcesReportNotInitialized(t *testing.T) {
	srv := NewServer(logging.NewNop(), config.Config{Host: "127.0.0.1", Port: "0"}, nil, nil)

	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), errNotInitialized.Error())
}

func connectMCP(t *testing.T, ts *httptest.Server) *sdkmcp.ClientSession {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "server-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint: ts.URL + "/mcp/stream",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func toolText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	txt, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return txt.Text
}

func TestMCP_ScrapeJobsTool(t *testing.T) {
	runner := &stubRunner{result: domain.RunResult{
		TotalElements:  5,
		TotalPages:     1,
		PagesProcessed: 1,
		TotalUpserted:  5,
		Errors:         []string{"page 0: upsert 5 rows: timeout"},
	}}
	ts := newTestServer(t, runner, &stubReader{}, nil)
	session := connectMCP(t, ts)

	ctx := context.Background()
	listed, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"scrape_jobs", "get_listing", "listing_stats"}, names)

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "scrape_jobs",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &body))
	assert.Equal(t, "Scrape complete", body["message"])
	assert.Equal(t, float64(5), body["totalUpserted"])
	assert.Equal(t, []any{"page 0: upsert 5 rows: timeout"}, body["errors"])
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestMCP_ScrapeJobsToolInitError(t *testing.T) {
	ts := newTestServer(t, nil, nil, errors.New("postgres: dsn is required"))
	session := connectMCP(t, ts)

	listed, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)

	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "scrape_jobs",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.JSONEq(t, `{"error":"postgres: dsn is required"}`, toolText(t, res))
}

func TestMCP_ListingTools(t *testing.T) {
	title := "Platform Engineer"
	reader := &stubReader{rows: map[string]domain.Listing{
		"r-1": {
			ID:        "r-1",
			Title:     title,
			Regions:   []string{"Seoul"},
			ScrapedAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	ts := newTestServer(t, &stubRunner{}, reader, nil)
	session := connectMCP(t, ts)
	ctx := context.Background()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_listing",
		Arguments: map[string]any{"id": "r-1"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, toolText(t, res), `"title": "Platform Engineer"`)
	assert.Contains(t, toolText(t, res), `"scraped_at": "2026-04-01T12:00:00.000Z"`)

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_listing",
		Arguments: map[string]any{"id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(toolText(t, res), "get_listing missing:"))

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "listing_stats",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"listings": 1}`, toolText(t, res))
}
