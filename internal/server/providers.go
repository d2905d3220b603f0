package server

import (
	"context"
	"fmt"

	"github.com/honeycarbs/zighang-ingest/internal/config"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"
	zighangProvider "github.com/honeycarbs/zighang-ingest/internal/domain/listing/providers/zighang"
	"github.com/honeycarbs/zighang-ingest/internal/ingest"
	"github.com/honeycarbs/zighang-ingest/internal/runlog"
	neo4jstore "github.com/honeycarbs/zighang-ingest/internal/storage/neo4j"
	pgstore "github.com/honeycarbs/zighang-ingest/internal/storage/postgres"
	sqlitestore "github.com/honeycarbs/zighang-ingest/internal/storage/sqlite"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
	n4j "github.com/honeycarbs/zighang-ingest/pkg/neo4j"
	"github.com/honeycarbs/zighang-ingest/pkg/postgres"
	"github.com/honeycarbs/zighang-ingest/pkg/sheets"
	"github.com/honeycarbs/zighang-ingest/pkg/sqlite"
	"github.com/honeycarbs/zighang-ingest/pkg/zighang"
)

// provideZighangClient builds the API client with its fixed base URL
func provideZighangClient() (*zighang.Client, error) {
	return zighang.NewClient(zighang.Config{})
}

// provideFetcher adapts the API client to listing.Fetcher
func provideFetcher(client *zighang.Client) (listing.Fetcher, error) {
	provider, err := zighangProvider.NewProvider(client)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// provideListingStore connects the backend selected by STORE_DRIVER and ensures its schema
func provideListingStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (ListingStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		client, err := postgres.NewClient(ctx, postgres.Config{
			DSN:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		return ensureSchema(ctx, pgstore.NewListingRepository(client), client.Close)

	case config.DriverSQLite:
		client, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite store opened", "path", cfg.SQLite.Path)
		return ensureSchema(ctx, sqlitestore.NewListingRepository(client), func() { _ = client.Close() })

	case config.DriverNeo4j:
		client, err := n4j.NewClient(ctx, n4j.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Neo4j client initialized", "uri", cfg.Neo4j.URI)
		return ensureSchema(ctx, neo4jstore.NewListingRepository(client), func() { _ = client.Close(context.Background()) })

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func ensureSchema(ctx context.Context, store ListingStore, closeFn func()) (ListingStore, func(), error) {
	if err := store.EnsureSchema(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}

// provideRepository narrows the store to the write side used by the loop
func provideRepository(store ListingStore) listing.Repository {
	return store
}

// provideServiceSettings extracts loop tunables from main config
func provideServiceSettings(cfg config.Config) listing.Settings {
	return listing.Settings{
		PageDelay:              cfg.Ingest.PageDelay,
		MaxConsecutiveFailures: cfg.Ingest.MaxConsecutiveFailures,
	}
}

// provideRecorder returns the Sheets run log when configured, otherwise a no-op.
// A Sheets client that cannot be built only disables the run log.
func provideRecorder(ctx context.Context, cfg config.Config, logger *logging.Logger) runlog.Recorder {
	if !cfg.RunLogEnabled() {
		return runlog.Nop{}
	}

	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.RunLog.CredentialsPath})
	if err != nil {
		logger.Warn("run log disabled", "err", err)
		return runlog.Nop{}
	}

	logger.Info("run log enabled", "spreadsheet_id", cfg.RunLog.SpreadsheetID, "tab", cfg.RunLog.Tab)
	return runlog.NewSheetsRecorder(client, cfg.RunLog.SpreadsheetID, cfg.RunLog.Tab)
}

// provideJob wraps the loop with the run timeout and run log
func provideJob(svc listing.Service, recorder runlog.Recorder, cfg config.Config, logger *logging.Logger) *ingest.Job {
	return ingest.NewJob(svc, recorder, cfg.Ingest.Timeout, logger)
}
