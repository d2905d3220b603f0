package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

// ListingReader reads back stored listings
type ListingReader interface {
	Get(ctx context.Context, id string) (domain.Listing, error)
	Count(ctx context.Context) (int64, error)
}

// GetListingParams defines the arguments for the get_listing tool
type GetListingParams struct {
	ID string `json:"id" jsonschema:"Recruitment id as returned by the zighang API"`
}

// ListingStatsParams is empty
type ListingStatsParams struct{}

type listingsHandler struct {
	reader ListingReader
}

// listingView is the JSON shape of a stored listing
type listingView struct {
	ID            string   `json:"id"`
	Affiliate     *string  `json:"affiliate"`
	Title         string   `json:"title"`
	DeadlineType  *string  `json:"deadline_type"`
	EndDate       *string  `json:"end_date"`
	CreatedAt     *string  `json:"created_at"`
	CareerMin     int      `json:"career_min"`
	CareerMax     int      `json:"career_max"`
	CompanyID     *string  `json:"company_id"`
	CompanyName   *string  `json:"company_name"`
	CompanyImage  *string  `json:"company_image"`
	Regions       []string `json:"regions"`
	EmployeeTypes []string `json:"employee_types"`
	Educations    []string `json:"educations"`
	DepthOnes     []string `json:"depth_ones"`
	DepthTwos     []string `json:"depth_twos"`
	DepthThrees   []string `json:"depth_threes"`
	Keywords      []string `json:"keywords"`
	Tags          []string `json:"tags"`
	Badges        []string `json:"badges"`
	Views         int      `json:"views"`
	ScrapedAt     string   `json:"scraped_at"`
}

// WithListingTools registers get_listing and listing_stats.
// A nil reader (store unavailable) registers nothing.
func WithListingTools(reader ListingReader) Option {
	return func(reg *registry) {
		if reader == nil {
			return
		}
		handler := &listingsHandler{reader: reader}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "get_listing",
			Description: "Load one stored listing by id",
		}, handler.get)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "listing_stats",
			Description: "Count stored listings",
		}, handler.stats)
	}
}

func (h *listingsHandler) get(ctx context.Context, _ *sdkmcp.CallToolRequest, params GetListingParams) (*sdkmcp.CallToolResult, any, error) {
	if params.ID == "" {
		return errorResult("get_listing requires an id"), nil, nil
	}

	row, err := h.reader.Get(ctx, params.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("get_listing %s: %v", params.ID, err)), nil, nil
	}

	res, err := jsonResult(toView(row), false)
	return res, nil, err
}

func (h *listingsHandler) stats(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListingStatsParams) (*sdkmcp.CallToolResult, any, error) {
	n, err := h.reader.Count(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("listing_stats: %v", err)), nil, nil
	}

	res, err := jsonResult(map[string]int64{"listings": n}, false)
	return res, nil, err
}

func toView(row domain.Listing) listingView {
	return listingView{
		ID:            row.ID,
		Affiliate:     row.Affiliate,
		Title:         row.Title,
		DeadlineType:  row.DeadlineType,
		EndDate:       row.EndDate,
		CreatedAt:     row.CreatedAt,
		CareerMin:     row.CareerMin,
		CareerMax:     row.CareerMax,
		CompanyID:     row.CompanyID,
		CompanyName:   row.CompanyName,
		CompanyImage:  row.CompanyImage,
		Regions:       row.Regions,
		EmployeeTypes: row.EmployeeTypes,
		Educations:    row.Educations,
		DepthOnes:     row.DepthOnes,
		DepthTwos:     row.DepthTwos,
		DepthThrees:   row.DepthThrees,
		Keywords:      row.Keywords,
		Tags:          row.Tags,
		Badges:        row.Badges,
		Views:         row.Views,
		ScrapedAt:     row.ScrapedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
