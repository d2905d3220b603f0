package neo4j

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"

	pkgneo4j "github.com/honeycarbs/zighang-ingest/pkg/neo4j"
)

// Ensure ListingRepository implements listing.Repository
var _ listing.Repository = (*ListingRepository)(nil)

// ErrNotFound is returned by Get when no listing node has the id
var ErrNotFound = errors.New("listing not found")

const constraintQuery = `
	CREATE CONSTRAINT listing_id IF NOT EXISTS
	FOR (l:Listing) REQUIRE l.id IS UNIQUE
`

const upsertQuery = `
	UNWIND $rows AS row
	MERGE (l:Listing {id: row.id})
	SET l.affiliate = row.affiliate,
	    l.title = row.title,
	    l.deadlineType = row.deadlineType,
	    l.endDate = row.endDate,
	    l.createdAt = row.createdAt,
	    l.careerMin = row.careerMin,
	    l.careerMax = row.careerMax,
	    l.companyId = row.companyId,
	    l.companyName = row.companyName,
	    l.companyImage = row.companyImage,
	    l.regions = row.regions,
	    l.employeeTypes = row.employeeTypes,
	    l.educations = row.educations,
	    l.depthOnes = row.depthOnes,
	    l.depthTwos = row.depthTwos,
	    l.depthThrees = row.depthThrees,
	    l.keywords = row.keywords,
	    l.tags = row.tags,
	    l.badges = row.badges,
	    l.views = row.views,
	    l.scrapedAt = datetime({epochMillis: row.scrapedAt})
	WITH l, row
	OPTIONAL MATCH (l)-[old:POSTED_BY]->(:Company)
	DELETE old
	WITH l, row
	FOREACH (_ IN CASE WHEN row.companyId IS NULL THEN [] ELSE [1] END |
		MERGE (c:Company {id: row.companyId})
		SET c.name = row.companyName, c.image = row.companyImage
		MERGE (l)-[:POSTED_BY]->(c)
	)
	RETURN count(DISTINCT l) AS affected
`

const getQuery = `
	MATCH (l:Listing {id: $id})
	RETURN l
`

const countQuery = `
	MATCH (l:Listing)
	RETURN count(l) AS n
`

// ListingRepository implements listing.Repository with Neo4j.
// Listings are nodes keyed by id; a known company id adds a POSTED_BY edge.
type ListingRepository struct {
	client *pkgneo4j.Client
}

// NewListingRepository creates a ListingRepository with a Neo4j client
func NewListingRepository(client *pkgneo4j.Client) *ListingRepository {
	return &ListingRepository{
		client: client,
	}
}

// EnsureSchema creates the unique id constraint for Listing nodes
func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	session := r.client.NewWriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, constraintQuery, nil)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: ensure schema: %w", err)
	}
	return nil
}

// UpsertListings merges listing nodes and sets every property from the batch
func (r *ListingRepository) UpsertListings(ctx context.Context, rows []domain.Listing) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	session := r.client.NewWriteSession(ctx)
	defer session.Close(ctx)

	params := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		params = append(params, listingParams(row))
	}

	affected, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, upsertQuery, map[string]any{"rows": params})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _, err := neo4j.GetRecordValue[int64](record, "affected")
		return n, err
	})
	if err != nil {
		return 0, fmt.Errorf("neo4j: upsert listings: %w", err)
	}

	return affected.(int64), nil
}

// Get loads one listing node by id
func (r *ListingRepository) Get(ctx context.Context, id string) (domain.Listing, error) {
	session := r.client.NewReadSession(ctx)
	defer session.Close(ctx)

	props, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, getQuery, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			if err := result.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		node, _, err := neo4j.GetRecordValue[neo4j.Node](result.Record(), "l")
		if err != nil {
			return nil, err
		}
		return node.Props, nil
	})
	if errors.Is(err, ErrNotFound) {
		return domain.Listing{}, ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("neo4j: get listing: %w", err)
	}

	return listingFromProps(props.(map[string]any)), nil
}

// Count returns the number of Listing nodes
func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	session := r.client.NewReadSession(ctx)
	defer session.Close(ctx)

	n, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, countQuery, nil)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _, err := neo4j.GetRecordValue[int64](record, "n")
		return v, err
	})
	if err != nil {
		return 0, fmt.Errorf("neo4j: count listings: %w", err)
	}
	return n.(int64), nil
}

func listingParams(row domain.Listing) map[string]any {
	return map[string]any{
		"id":            row.ID,
		"affiliate":     nullable(row.Affiliate),
		"title":         row.Title,
		"deadlineType":  nullable(row.DeadlineType),
		"endDate":       nullable(row.EndDate),
		"createdAt":     nullable(row.CreatedAt),
		"careerMin":     int64(row.CareerMin),
		"careerMax":     int64(row.CareerMax),
		"companyId":     nullable(row.CompanyID),
		"companyName":   nullable(row.CompanyName),
		"companyImage":  nullable(row.CompanyImage),
		"regions":       nonNil(row.Regions),
		"employeeTypes": nonNil(row.EmployeeTypes),
		"educations":    nonNil(row.Educations),
		"depthOnes":     nonNil(row.DepthOnes),
		"depthTwos":     nonNil(row.DepthTwos),
		"depthThrees":   nonNil(row.DepthThrees),
		"keywords":      nonNil(row.Keywords),
		"tags":          nonNil(row.Tags),
		"badges":        nonNil(row.Badges),
		"views":         int64(row.Views),
		"scrapedAt":     row.ScrapedAt.UnixMilli(),
	}
}

func listingFromProps(props map[string]any) domain.Listing {
	row := domain.Listing{
		ID:            stringProp(props, "id"),
		Affiliate:     optionalProp(props, "affiliate"),
		Title:         stringProp(props, "title"),
		DeadlineType:  optionalProp(props, "deadlineType"),
		EndDate:       optionalProp(props, "endDate"),
		CreatedAt:     optionalProp(props, "createdAt"),
		CareerMin:     intProp(props, "careerMin"),
		CareerMax:     intProp(props, "careerMax"),
		CompanyID:     optionalProp(props, "companyId"),
		CompanyName:   optionalProp(props, "companyName"),
		CompanyImage:  optionalProp(props, "companyImage"),
		Regions:       listProp(props, "regions"),
		EmployeeTypes: listProp(props, "employeeTypes"),
		Educations:    listProp(props, "educations"),
		DepthOnes:     listProp(props, "depthOnes"),
		DepthTwos:     listProp(props, "depthTwos"),
		DepthThrees:   listProp(props, "depthThrees"),
		Keywords:      listProp(props, "keywords"),
		Tags:          listProp(props, "tags"),
		Badges:        listProp(props, "badges"),
		Views:         intProp(props, "views"),
	}

	switch v := props["scrapedAt"].(type) {
	case time.Time:
		row.ScrapedAt = v.UTC()
	case neo4j.LocalDateTime:
		row.ScrapedAt = v.Time().UTC()
	}

	return row
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func optionalProp(props map[string]any, key string) *string {
	s, ok := props[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func intProp(props map[string]any, key string) int {
	n, _ := props[key].(int64)
	return int(n)
}

// listProp reads a string list; Neo4j returns lists as []any
func listProp(props map[string]any, key string) []string {
	raw, _ := props[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
