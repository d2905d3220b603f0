package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/report"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

// Runner executes one ingestion
type Runner interface {
	Run(ctx context.Context) (domain.RunResult, error)
}

// ScrapeJobsParams is empty; a run needs no input
type ScrapeJobsParams struct{}

type scrapeJobsHandler struct {
	runner  Runner
	initErr error
	logger  *logging.Logger
}

// WithScrapeJobs registers the scrape_jobs tool.
// A non-nil initErr makes every call answer with the failure body.
func WithScrapeJobs(runner Runner, initErr error, logger *logging.Logger) Option {
	return func(reg *registry) {
		handler := &scrapeJobsHandler{runner: runner, initErr: initErr, logger: logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "scrape_jobs",
			Description: "Fetch every page of zighang recruitments and upsert them into the listing store",
		}, handler.handle)
	}
}

func (h *scrapeJobsHandler) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ScrapeJobsParams) (*sdkmcp.CallToolResult, any, error) {
	if h.initErr != nil {
		res, err := jsonResult(report.FromError(h.initErr), true)
		return res, nil, err
	}

	h.logger.Info("scrape_jobs invoked")

	result, runErr := h.runner.Run(context.WithoutCancel(ctx))
	res, err := jsonResult(report.Body(result, runErr), runErr != nil)
	return res, nil, err
}
