package server

import (
	"context"

	"github.com/honeycarbs/zighang-ingest/internal/config"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"
	"github.com/honeycarbs/zighang-ingest/internal/ingest"
	"github.com/honeycarbs/zighang-ingest/internal/server/tools"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

// ListingStore is what every storage backend provides
type ListingStore interface {
	listing.Repository
	tools.ListingReader
	EnsureSchema(ctx context.Context) error
}

// Resources holds the wired ingestion job and its store
type Resources struct {
	Job   *ingest.Job
	Store ListingStore
}

func newResources(job *ingest.Job, store ListingStore) *Resources {
	return &Resources{
		Job:   job,
		Store: store,
	}
}

// Setup wires Resources from config. cfgErr is a config error that still
// left a usable config (missing store variables); it is returned as the
// initialisation error without touching any backend. The returned cleanup
// is always safe to call.
func Setup(ctx context.Context, cfg config.Config, cfgErr error, logger *logging.Logger) (*Resources, func(), error) {
	noop := func() {}

	if cfgErr != nil {
		logger.Warn("ingestion disabled by configuration", "err", cfgErr)
		return nil, noop, cfgErr
	}

	res, cleanup, err := InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Warn("failed to initialize resources", "err", err)
		return nil, noop, err
	}

	logger.Info("ingestion resources initialized", "store", cfg.Store.Driver, "run_log", cfg.RunLogEnabled())
	return res, cleanup, nil
}
