package listing

import (
	"time"

	"github.com/honeycarbs/zighang-ingest/internal/domain"
)

// MapListing projects a source record onto a storage row. It is total:
// absent career bounds and views become 0, absent lists become empty,
// and absent scalars stay nil.
func MapListing(rec domain.SourceRecord, scrapedAt time.Time) domain.Listing {
	row := domain.Listing{
		ID:            rec.ID,
		Affiliate:     rec.Affiliate,
		Title:         rec.Title,
		DeadlineType:  rec.DeadlineType,
		EndDate:       rec.EndDate,
		CreatedAt:     rec.CreatedAt,
		CareerMin:     intOrZero(rec.CareerMin),
		CareerMax:     intOrZero(rec.CareerMax),
		Regions:       orEmpty(rec.Regions),
		EmployeeTypes: orEmpty(rec.EmployeeTypes),
		Educations:    orEmpty(rec.Educations),
		DepthOnes:     orEmpty(rec.DepthOnes),
		DepthTwos:     orEmpty(rec.DepthTwos),
		DepthThrees:   orEmpty(rec.DepthThrees),
		Keywords:      orEmpty(rec.Keywords),
		Tags:          orEmpty(rec.Tags),
		Badges:        orEmpty(rec.Badges),
		Views:         intOrZero(rec.Views),
		ScrapedAt:     scrapedAt.UTC(),
	}

	if rec.Company != nil {
		row.CompanyID = rec.Company.ID
		row.CompanyName = rec.Company.Name
		row.CompanyImage = rec.Company.Image
	}

	return row
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
