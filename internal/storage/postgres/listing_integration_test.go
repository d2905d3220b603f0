//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	pkgpostgres "github.com/honeycarbs/zighang-ingest/pkg/postgres"
)

// setupPostgres starts a Postgres container and returns a repository on it
func setupPostgres(t *testing.T) *ListingRepository {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "ingest",
			"POSTGRES_PASSWORD": "ingest",
			"POSTGRES_DB":       "ingest",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Postgres endpoint: %v", err)
	}

	client, err := pkgpostgres.NewClient(ctx, pkgpostgres.Config{
		DSN: fmt.Sprintf("postgres://ingest:ingest@%s/ingest?sslmode=disable", endpoint),
	})
	if err != nil {
		t.Fatalf("Failed to connect to Postgres: %v", err)
	}
	t.Cleanup(client.Close)

	repo := NewListingRepository(client)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func strPtr(s string) *string { return &s }

func sampleListing(id string) domain.Listing {
	return domain.Listing{
		ID:            id,
		Title:         "Data Engineer",
		CompanyID:     strPtr("c-9"),
		CompanyName:   strPtr("Globex"),
		CareerMin:     0,
		CareerMax:     2,
		Regions:       []string{"Seoul"},
		EmployeeTypes: []string{"FULL_TIME"},
		Educations:    []string{},
		DepthOnes:     []string{},
		DepthTwos:     []string{},
		DepthThrees:   []string{},
		Keywords:      []string{"spark", "go"},
		Tags:          []string{},
		Badges:        []string{},
		Views:         7,
		ScrapedAt:     time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestListingRepository_Integration_Idempotent(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	rows := []domain.Listing{sampleListing("a"), sampleListing("b")}

	n, err := repo.UpsertListings(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	first, err := repo.Get(ctx, "a")
	require.NoError(t, err)

	n, err = repo.UpsertListings(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	second, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, rows[0], second)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListingRepository_Integration_LastWriteWins(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	row := sampleListing("a")
	_, err := repo.UpsertListings(ctx, []domain.Listing{row})
	require.NoError(t, err)

	row.Title = "Staff Data Engineer"
	row.CompanyName = nil
	row.Keywords = []string{}
	_, err = repo.UpsertListings(ctx, []domain.Listing{row})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Staff Data Engineer", got.Title)
	assert.Nil(t, got.CompanyName)
	assert.Equal(t, []string{}, got.Keywords)
}

func TestListingRepository_Integration_NotFound(t *testing.T) {
	repo := setupPostgres(t)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
