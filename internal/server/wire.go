//go:build wireinject
// +build wireinject

package server

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/zighang-ingest/internal/config"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"
	"github.com/honeycarbs/zighang-ingest/pkg/logging"
)

// InitializeResources creates Resources with all resources wired up
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Remote API
		provideZighangClient,
		provideFetcher,

		// Storage
		provideListingStore,
		provideRepository,

		// Services
		provideServiceSettings,
		listing.NewServiceWithDeps,
		provideRecorder,
		provideJob,

		newResources,
	)

	return nil, nil, nil
}
