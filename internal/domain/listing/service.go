package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

const (
	// DefaultPageDelay is the courtesy pause between freshly fetched pages
	DefaultPageDelay = 300 * time.Millisecond

	// DefaultMaxConsecutiveFailures is the breaker threshold for back-to-back fetch failures
	DefaultMaxConsecutiveFailures = 3
)

// Service runs one ingestion pass over every page of the remote source
type Service interface {
	Run(ctx context.Context) (domain.RunResult, error)
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Option configures Service
type Option func(*config)

type config struct {
	fetcher     Fetcher
	repo        Repository
	clock       func() time.Time
	sleep       Sleeper
	pageDelay   time.Duration
	maxFailures int
	logger      *logging.Logger
}

// WithFetcher sets the page source
func WithFetcher(fetcher Fetcher) Option {
	return func(c *config) {
		c.fetcher = fetcher
	}
}

// WithRepository sets the repository
func WithRepository(repo Repository) Option {
	return func(c *config) {
		c.repo = repo
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithSleeper replaces the delay implementation
func WithSleeper(sleep Sleeper) Option {
	return func(c *config) {
		c.sleep = sleep
	}
}

// WithPageDelay sets the pause between pages; zero disables it
func WithPageDelay(d time.Duration) Option {
	return func(c *config) {
		c.pageDelay = d
	}
}

// WithMaxConsecutiveFailures sets how many back-to-back fetch failures abort a run
func WithMaxConsecutiveFailures(n int) Option {
	return func(c *config) {
		c.maxFailures = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		clock:       time.Now,
		sleep:       sleepContext,
		pageDelay:   DefaultPageDelay,
		maxFailures: DefaultMaxConsecutiveFailures,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.fetcher == nil {
		return nil, fmt.Errorf("listing.Service: fetcher is required")
	}
	if cfg.repo == nil {
		return nil, fmt.Errorf("listing.Service: repository is required")
	}
	if cfg.maxFailures < 1 {
		return nil, fmt.Errorf("listing.Service: max consecutive failures must be >= 1 (got %d)", cfg.maxFailures)
	}
	if cfg.pageDelay < 0 {
		return nil, fmt.Errorf("listing.Service: page delay must not be negative")
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	return &service{
		fetcher:     cfg.fetcher,
		repo:        cfg.repo,
		clock:       cfg.clock,
		sleep:       cfg.sleep,
		pageDelay:   cfg.pageDelay,
		maxFailures: cfg.maxFailures,
		logger:      cfg.logger,
	}, nil
}

// Settings holds the tunables of NewServiceWithDeps
type Settings struct {
	PageDelay              time.Duration
	MaxConsecutiveFailures int
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(fetcher Fetcher, repo Repository, settings Settings, logger *logging.Logger) (Service, error) {
	maxFailures := settings.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = DefaultMaxConsecutiveFailures
	}

	return NewService(
		WithFetcher(fetcher),
		WithRepository(repo),
		WithPageDelay(settings.PageDelay),
		WithMaxConsecutiveFailures(maxFailures),
		WithLogger(logger),
	)
}

type service struct {
	fetcher     Fetcher
	repo        Repository
	clock       func() time.Time
	sleep       Sleeper
	pageDelay   time.Duration
	maxFailures int
	logger      *logging.Logger
}

// Run fetches page 0 to learn the page count, then walks the pages in order,
// upserting each non-empty batch. Fetch and upsert failures are collected in
// the result; only maxFailures consecutive fetch failures stop the walk early.
// An error is returned only when no result can be produced.
func (s *service) Run(ctx context.Context) (domain.RunResult, error) {
	started := s.clock()
	result := domain.RunResult{
		RunID:     uuid.New(),
		StartedAt: started,
	}
	window := domain.NewQueryWindow(started)
	log := s.logger.With("run_id", result.RunID.String(), "source", s.fetcher.Name())

	log.Info("ingestion run started", "window_end", window.End)

	first, err := s.fetcher.FetchPage(ctx, 0, window)
	if err != nil {
		fetchFailuresTotal.Inc()
		runsTotal.WithLabelValues("failed").Inc()
		log.Error("first page fetch failed", "err", err)
		return domain.RunResult{}, fmt.Errorf("fetch first page: %w", err)
	}
	pagesFetchedTotal.Inc()

	result.TotalElements = first.TotalElements
	result.TotalPages = first.TotalPages

	consecutiveFailures := 0

	for page := 0; page < first.TotalPages; page++ {
		current := first
		if page > 0 {
			current, err = s.fetcher.FetchPage(ctx, page, window)
			if err != nil {
				fetchFailuresTotal.Inc()
				consecutiveFailures++
				result.Errors = append(result.Errors, fmt.Sprintf("page %d: %v", page, err))
				log.Warn("page fetch failed", "page", page, "consecutive", consecutiveFailures, "err", err)

				if consecutiveFailures >= s.maxFailures {
					result.Aborted = true
					log.Error("too many consecutive fetch failures, aborting run", "page", page, "consecutive", consecutiveFailures)
					break
				}

				if err := s.pause(ctx, page, first.TotalPages); err != nil {
					runsTotal.WithLabelValues("failed").Inc()
					return domain.RunResult{}, err
				}
				continue
			}
			consecutiveFailures = 0
			pagesFetchedTotal.Inc()
		}

		if len(current.Records) == 0 {
			log.Info("empty page, stopping", "page", page)
			break
		}

		scrapedAt := s.clock()
		rows := make([]domain.Listing, 0, len(current.Records))
		for _, rec := range current.Records {
			rows = append(rows, MapListing(rec, scrapedAt))
		}

		affected, err := s.repo.UpsertListings(ctx, rows)
		if err != nil {
			upsertFailuresTotal.Inc()
			perr := &PersistenceError{Page: page, Rows: len(rows), Err: err}
			result.Errors = append(result.Errors, perr.Error())
			log.Warn("page upsert failed", "page", page, "rows", len(rows), "err", err)
		} else {
			rowsUpsertedTotal.Add(float64(affected))
			result.TotalUpserted += affected
			log.Debug("page upserted", "page", page, "rows", len(rows), "affected", affected)
		}
		result.PagesProcessed++

		if current.Last {
			log.Debug("last page reached", "page", page)
			break
		}

		if page > 0 {
			if err := s.pause(ctx, page, first.TotalPages); err != nil {
				runsTotal.WithLabelValues("failed").Inc()
				return domain.RunResult{}, err
			}
		}
	}

	result.Elapsed = s.clock().Sub(started)
	runDurationSeconds.Observe(result.Elapsed.Seconds())
	if result.Aborted {
		runsTotal.WithLabelValues("aborted").Inc()
	} else {
		runsTotal.WithLabelValues("completed").Inc()
	}

	log.Info("ingestion run finished",
		"pages_processed", result.PagesProcessed,
		"total_pages", result.TotalPages,
		"total_upserted", result.TotalUpserted,
		"errors", len(result.Errors),
		"aborted", result.Aborted,
		"elapsed", result.Elapsed,
	)

	return result, nil
}

// pause applies the inter-page delay unless page is the final one
func (s *service) pause(ctx context.Context, page, totalPages int) error {
	if s.pageDelay <= 0 || page+1 >= totalPages {
		return nil
	}
	if err := s.sleep(ctx, s.pageDelay); err != nil {
		return fmt.Errorf("run interrupted after page %d: %w", page, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
