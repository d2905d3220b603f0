package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"
	pkgpostgres "github.com/honeycarbs/zighang-ingest/pkg/postgres"
)

// Ensure ListingRepository implements listing.Repository
var _ listing.Repository = (*ListingRepository)(nil)

// ErrNotFound is returned by Get when no row has the id
var ErrNotFound = errors.New("listing not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scrape_jobs (
	id             text PRIMARY KEY,
	affiliate      text,
	title          text NOT NULL DEFAULT '',
	deadline_type  text,
	end_date       text,
	created_at     text,
	career_min     integer NOT NULL DEFAULT 0,
	career_max     integer NOT NULL DEFAULT 0,
	company_id     text,
	company_name   text,
	company_image  text,
	regions        text[] NOT NULL DEFAULT '{}',
	employee_types text[] NOT NULL DEFAULT '{}',
	educations     text[] NOT NULL DEFAULT '{}',
	depth_ones     text[] NOT NULL DEFAULT '{}',
	depth_twos     text[] NOT NULL DEFAULT '{}',
	depth_threes   text[] NOT NULL DEFAULT '{}',
	keywords       text[] NOT NULL DEFAULT '{}',
	tags           text[] NOT NULL DEFAULT '{}',
	badges         text[] NOT NULL DEFAULT '{}',
	views          integer NOT NULL DEFAULT 0,
	scraped_at     timestamptz NOT NULL
)`

const upsertSQL = `
INSERT INTO scrape_jobs (
	id, affiliate, title, deadline_type, end_date, created_at,
	career_min, career_max, company_id, company_name, company_image,
	regions, employee_types, educations, depth_ones, depth_twos, depth_threes,
	keywords, tags, badges, views, scraped_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
ON CONFLICT (id) DO UPDATE SET
	affiliate      = EXCLUDED.affiliate,
	title          = EXCLUDED.title,
	deadline_type  = EXCLUDED.deadline_type,
	end_date       = EXCLUDED.end_date,
	created_at     = EXCLUDED.created_at,
	career_min     = EXCLUDED.career_min,
	career_max     = EXCLUDED.career_max,
	company_id     = EXCLUDED.company_id,
	company_name   = EXCLUDED.company_name,
	company_image  = EXCLUDED.company_image,
	regions        = EXCLUDED.regions,
	employee_types = EXCLUDED.employee_types,
	educations     = EXCLUDED.educations,
	depth_ones     = EXCLUDED.depth_ones,
	depth_twos     = EXCLUDED.depth_twos,
	depth_threes   = EXCLUDED.depth_threes,
	keywords       = EXCLUDED.keywords,
	tags           = EXCLUDED.tags,
	badges         = EXCLUDED.badges,
	views          = EXCLUDED.views,
	scraped_at     = EXCLUDED.scraped_at`

const selectSQL = `
SELECT id, affiliate, title, deadline_type, end_date, created_at,
	career_min, career_max, company_id, company_name, company_image,
	regions, employee_types, educations, depth_ones, depth_twos, depth_threes,
	keywords, tags, badges, views, scraped_at
FROM scrape_jobs
WHERE id = $1`

// ListingRepository implements listing.Repository with Postgres
type ListingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository creates a ListingRepository with a Postgres client
func NewListingRepository(client *pkgpostgres.Client) *ListingRepository {
	return &ListingRepository{
		pool: client.Pool(),
	}
}

// EnsureSchema creates the scrape_jobs table when missing
func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// UpsertListings sends every row in one batch; the batch runs in a single implicit transaction
func (r *ListingRepository) UpsertListings(ctx context.Context, rows []domain.Listing) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, row := range rows {
		b.Queue(upsertSQL,
			row.ID, row.Affiliate, row.Title, row.DeadlineType, row.EndDate, row.CreatedAt,
			row.CareerMin, row.CareerMax, row.CompanyID, row.CompanyName, row.CompanyImage,
			row.Regions, row.EmployeeTypes, row.Educations, row.DepthOnes, row.DepthTwos, row.DepthThrees,
			row.Keywords, row.Tags, row.Badges, row.Views, row.ScrapedAt,
		)
	}

	br := r.pool.SendBatch(ctx, b)

	var affected int64
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("postgres: upsert: %w", err)
		}
		affected += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("postgres: upsert: %w", err)
	}

	return affected, nil
}

// Get loads one listing by id
func (r *ListingRepository) Get(ctx context.Context, id string) (domain.Listing, error) {
	var (
		row       domain.Listing
		scrapedAt time.Time
	)

	err := r.pool.QueryRow(ctx, selectSQL, id).Scan(
		&row.ID, &row.Affiliate, &row.Title, &row.DeadlineType, &row.EndDate, &row.CreatedAt,
		&row.CareerMin, &row.CareerMax, &row.CompanyID, &row.CompanyName, &row.CompanyImage,
		&row.Regions, &row.EmployeeTypes, &row.Educations, &row.DepthOnes, &row.DepthTwos, &row.DepthThrees,
		&row.Keywords, &row.Tags, &row.Badges, &row.Views, &scrapedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Listing{}, ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("postgres: get listing: %w", err)
	}

	row.ScrapedAt = scrapedAt.UTC()
	return row, nil
}

// Count returns the number of stored listings
func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM scrape_jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count listings: %w", err)
	}
	return n, nil
}
