package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/honeycarbs/zighang-ingest/internal/config"
	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/report"
	"github.com/honeycarbs/zighang-ingest/internal/server/tools"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

var errNotInitialized = errors.New("ingestion resources are not initialized")

// Server exposes the ingestion triggers over HTTP
type Server struct {
	logger *logging.Logger
	config config.Config

	srv     *http.Server
	started atomic.Bool
}

// NewServer constructs the HTTP server. When initErr is set (or res is nil)
// every trigger answers with the failure body instead of running.
func NewServer(log *logging.Logger, cfg config.Config, res *Resources, initErr error) *Server {
	var runner tools.Runner
	var reader tools.ListingReader
	if res != nil && res.Job != nil {
		runner = res.Job
		reader = res.Store
	} else if initErr == nil {
		initErr = errNotInitialized
	}

	httpSrv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           NewHandler(log, runner, reader, initErr),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		logger: log,
		config: cfg,
		srv:    httpSrv,
	}
}

// NewHandler builds the route table:
// /run (GET or POST) runs one ingestion, /mcp/stream serves MCP,
// /metrics serves Prometheus and /healthz answers ok.
func NewHandler(log *logging.Logger, runner tools.Runner, reader tools.ListingReader, initErr error) http.Handler {
	impl := &sdkmcp.Implementation{
		Name:    "zighang-ingest",
		Version: "0.1.0",
	}

	mcpServer := sdkmcp.NewServer(impl, nil)
	tools.Register(mcpServer,
		tools.WithScrapeJobs(runner, initErr, log),
		tools.WithListingTools(reader),
	)

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(func(req *http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp/stream", mcpHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/run", runHandler(log, runner, initErr))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

func runHandler(log *logging.Logger, runner tools.Runner, initErr error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if initErr != nil {
			report.WriteJSON(w, domain.RunResult{}, initErr)
			return
		}

		log.Info("run requested", "remote", r.RemoteAddr)

		// a run is not tied to the requesting connection
		result, err := runner.Run(context.WithoutCancel(r.Context()))
		report.WriteJSON(w, result, err)
	}
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("HTTP server listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("HTTP server shutdown with error", "err", err)
		return err
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
