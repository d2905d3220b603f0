package listing

import (
	"context"
	"fmt"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

// Repository persists listings
type Repository interface {
	// UpsertListings inserts or overwrites rows keyed by ID and reports the affected row count
	UpsertListings(ctx context.Context, rows []domain.Listing) (int64, error)
}

// PersistenceError records a batch the store rejected
type PersistenceError struct {
	Page int
	Rows int
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("page %d: upsert %d rows: %v", e.Page, e.Rows, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
