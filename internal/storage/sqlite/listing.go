package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"
	pkgsqlite "github.com/honeycarbs/zighang-ingest/pkg/sqlite"
)

// Ensure ListingRepository implements listing.Repository
var _ listing.Repository = (*ListingRepository)(nil)

// ErrNotFound is returned by Get when no row has the id
var ErrNotFound = errors.New("listing not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scrape_jobs (
  id TEXT PRIMARY KEY,
  affiliate TEXT,
  title TEXT NOT NULL DEFAULT '',
  deadline_type TEXT,
  end_date TEXT,
  created_at TEXT,
  career_min INTEGER NOT NULL DEFAULT 0,
  career_max INTEGER NOT NULL DEFAULT 0,
  company_id TEXT,
  company_name TEXT,
  company_image TEXT,
  regions TEXT NOT NULL DEFAULT '[]',
  employee_types TEXT NOT NULL DEFAULT '[]',
  educations TEXT NOT NULL DEFAULT '[]',
  depth_ones TEXT NOT NULL DEFAULT '[]',
  depth_twos TEXT NOT NULL DEFAULT '[]',
  depth_threes TEXT NOT NULL DEFAULT '[]',
  keywords TEXT NOT NULL DEFAULT '[]',
  tags TEXT NOT NULL DEFAULT '[]',
  badges TEXT NOT NULL DEFAULT '[]',
  views INTEGER NOT NULL DEFAULT 0,
  scraped_at TEXT NOT NULL
);`

const upsertSQL = `
INSERT INTO scrape_jobs (
  id, affiliate, title, deadline_type, end_date, created_at,
  career_min, career_max, company_id, company_name, company_image,
  regions, employee_types, educations, depth_ones, depth_twos, depth_threes,
  keywords, tags, badges, views, scraped_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  affiliate = excluded.affiliate,
  title = excluded.title,
  deadline_type = excluded.deadline_type,
  end_date = excluded.end_date,
  created_at = excluded.created_at,
  career_min = excluded.career_min,
  career_max = excluded.career_max,
  company_id = excluded.company_id,
  company_name = excluded.company_name,
  company_image = excluded.company_image,
  regions = excluded.regions,
  employee_types = excluded.employee_types,
  educations = excluded.educations,
  depth_ones = excluded.depth_ones,
  depth_twos = excluded.depth_twos,
  depth_threes = excluded.depth_threes,
  keywords = excluded.keywords,
  tags = excluded.tags,
  badges = excluded.badges,
  views = excluded.views,
  scraped_at = excluded.scraped_at;`

const selectSQL = `
SELECT id, affiliate, title, deadline_type, end_date, created_at,
  career_min, career_max, company_id, company_name, company_image,
  regions, employee_types, educations, depth_ones, depth_twos, depth_threes,
  keywords, tags, badges, views, scraped_at
FROM scrape_jobs
WHERE id = ?;`

// ListingRepository implements listing.Repository on a local sqlite file
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a ListingRepository with a sqlite client
func NewListingRepository(client *pkgsqlite.Client) *ListingRepository {
	return &ListingRepository{db: client.DB()}
}

// EnsureSchema creates the scrape_jobs table when missing
func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

// UpsertListings writes the batch in one transaction
func (r *ListingRepository) UpsertListings(ctx context.Context, rows []domain.Listing) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var affected int64
	for _, row := range rows {
		args, err := rowArgs(row)
		if err != nil {
			return 0, fmt.Errorf("sqlite: encode listing %s: %w", row.ID, err)
		}

		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return 0, fmt.Errorf("sqlite: upsert listing %s: %w", row.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}

	return affected, nil
}

// Get loads one listing by id
func (r *ListingRepository) Get(ctx context.Context, id string) (domain.Listing, error) {
	var row domain.Listing
	var affiliate, deadlineType, endDate, createdAt sql.NullString
	var companyID, companyName, companyImage sql.NullString
	var regions, employeeTypes, educations, ones, twos, threes string
	var keywords, tags, badges, scrapedAt string

	err := r.db.QueryRowContext(ctx, selectSQL, id).Scan(
		&row.ID, &affiliate, &row.Title, &deadlineType, &endDate, &createdAt,
		&row.CareerMin, &row.CareerMax, &companyID, &companyName, &companyImage,
		&regions, &employeeTypes, &educations, &ones, &twos, &threes,
		&keywords, &tags, &badges, &row.Views, &scrapedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("sqlite: get listing: %w", err)
	}

	row.Affiliate = fromNull(affiliate)
	row.DeadlineType = fromNull(deadlineType)
	row.EndDate = fromNull(endDate)
	row.CreatedAt = fromNull(createdAt)
	row.CompanyID = fromNull(companyID)
	row.CompanyName = fromNull(companyName)
	row.CompanyImage = fromNull(companyImage)

	lists := []struct {
		raw string
		dst *[]string
	}{
		{regions, &row.Regions},
		{employeeTypes, &row.EmployeeTypes},
		{educations, &row.Educations},
		{ones, &row.DepthOnes},
		{twos, &row.DepthTwos},
		{threes, &row.DepthThrees},
		{keywords, &row.Keywords},
		{tags, &row.Tags},
		{badges, &row.Badges},
	}
	for _, l := range lists {
		*l.dst = []string{}
		if err := json.Unmarshal([]byte(l.raw), l.dst); err != nil {
			return domain.Listing{}, fmt.Errorf("sqlite: decode list column: %w", err)
		}
	}

	row.ScrapedAt, err = time.Parse(time.RFC3339Nano, scrapedAt)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("sqlite: decode scraped_at: %w", err)
	}

	return row, nil
}

// Count returns the number of stored listings
func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM scrape_jobs;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count listings: %w", err)
	}
	return n, nil
}

func rowArgs(row domain.Listing) ([]any, error) {
	lists := [][]string{
		row.Regions, row.EmployeeTypes, row.Educations,
		row.DepthOnes, row.DepthTwos, row.DepthThrees,
		row.Keywords, row.Tags, row.Badges,
	}
	encoded := make([]any, 0, len(lists))
	for _, l := range lists {
		if l == nil {
			l = []string{}
		}
		b, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, string(b))
	}

	args := []any{
		row.ID, toNull(row.Affiliate), row.Title, toNull(row.DeadlineType), toNull(row.EndDate), toNull(row.CreatedAt),
		row.CareerMin, row.CareerMax, toNull(row.CompanyID), toNull(row.CompanyName), toNull(row.CompanyImage),
	}
	args = append(args, encoded...)
	args = append(args, row.Views, row.ScrapedAt.UTC().Format(time.RFC3339Nano))
	return args, nil
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
