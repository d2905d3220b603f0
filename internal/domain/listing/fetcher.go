package listing

import (
	"context"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

// Fetcher represents the remote listing source paged by the ingestion loop
type Fetcher interface {
	// e.g. "zighang"
	Name() string

	// FetchPage returns one 0-based page. Implementations must not retry.
	FetchPage(ctx context.Context, page int, window domain.QueryWindow) (domain.Page, error)
}
