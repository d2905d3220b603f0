package zighang

import (
	"context"
	"fmt"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
	"github.com/honeycarbs/zighang-ingest/internal/domain/listing"
	"github.com/honeycarbs/zighang-ingest/pkg/zighang"
)

// pageClient describes the subset of the Zighang client used by the provider.
type pageClient interface {
	FetchPage(ctx context.Context, page int, window zighang.Window) (*zighang.Page, error)
}

// Provider implements listing.Fetcher using the Zighang API
type Provider struct {
	client pageClient
}

// NewProvider builds a Zighang provider
func NewProvider(client pageClient) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("zighang provider: client is required")
	}
	return &Provider{client: client}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return "zighang"
}

// FetchPage requests one page and converts it into domain records
func (p *Provider) FetchPage(ctx context.Context, page int, window domain.QueryWindow) (domain.Page, error) {
	if p == nil || p.client == nil {
		return domain.Page{}, fmt.Errorf("zighang provider: client is nil")
	}

	resp, err := p.client.FetchPage(ctx, page, zighang.Window{
		Start: window.Start,
		End:   zighang.WindowEnd(window.End),
	})
	if err != nil {
		return domain.Page{}, err
	}

	records := make([]domain.SourceRecord, 0, len(resp.Recruitments))
	for _, r := range resp.Recruitments {
		records = append(records, toSourceRecord(r))
	}

	return domain.Page{
		Index:         resp.Index,
		Size:          resp.Size,
		TotalElements: resp.TotalElements,
		TotalPages:    resp.TotalPages,
		Last:          resp.Last,
		Records:       records,
	}, nil
}

var _ listing.Fetcher = (*Provider)(nil)

func toSourceRecord(r zighang.Recruitment) domain.SourceRecord {
	rec := domain.SourceRecord{
		ID:            r.ID,
		Title:         r.Title,
		Affiliate:     r.Affiliate,
		DeadlineType:  r.DeadlineType,
		EndDate:       r.EndDate,
		CreatedAt:     r.CreatedAt,
		CareerMin:     r.CareerMin,
		CareerMax:     r.CareerMax,
		Regions:       r.Regions,
		EmployeeTypes: r.EmployeeTypes,
		Educations:    r.Educations,
		DepthOnes:     r.DepthOnes,
		DepthTwos:     r.DepthTwos,
		DepthThrees:   r.DepthThrees,
		Keywords:      r.Keywords,
		Tags:          r.Tags,
		Badges:        r.Badges,
		Views:         r.Views,
	}

	if r.Company != nil {
		rec.Company = &domain.Company{
			ID:    r.Company.ID,
			Name:  r.Company.Name,
			Image: r.Company.Image,
		}
	}

	return rec
}
