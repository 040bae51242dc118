// Package store persists property listings and answers bounding box and
// filter queries over them.
package store

import (
	"strings"
	"time"

	"github.com/iwvelando/deal-finder/internal/analysis"
)

// Property is a stored property listing.
type Property struct {
	ID        int64
	Address   string
	Street    string
	City      string
	State     string
	Zip       string
	Latitude  float64
	Longitude float64

	ForSale      bool
	Status       string
	DateListed   *time.Time
	DaysOnMarket int

	Price        float64
	Sqft         int
	Beds         int
	Baths        float64
	PricePerSqft float64
	LotSize      int
	HOA          float64

	HomeType       string
	HomeDesign     string
	EstimatedTaxes float64
	YearBuilt      int
	Units          int

	LastSoldDate   *time.Time
	LastSoldAmount *float64

	EstimatedMonthlyRent *float64
}

// ToAnalysisProperty returns the attributes the analysis engine needs.
func (p Property) ToAnalysisProperty() analysis.Property {
	return analysis.Property{
		Price:            p.Price,
		Area:             float64(p.Sqft),
		Beds:             p.Beds,
		Baths:            p.Baths,
		YearBuilt:        p.YearBuilt,
		AnnualTaxes:      p.EstimatedTaxes,
		MonthlyHOA:       p.HOA,
		Units:            p.Units,
		KnownMonthlyRent: p.EstimatedMonthlyRent,
	}
}

// normalize fills derived and defaulted fields before a property is stored.
func (p *Property) normalize() {
	if p.Units <= 0 {
		p.Units = 1
	}
	if strings.TrimSpace(p.Status) == "" {
		p.Status = "For Sale"
	}
	if p.PricePerSqft == 0 && p.Sqft > 0 {
		p.PricePerSqft = p.Price / float64(p.Sqft)
	}
}

// BoundingBox is a latitude/longitude rectangle.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// Contains reports whether the point lies within the box, edges included.
func (b BoundingBox) Contains(latitude, longitude float64) bool {
	return latitude >= b.South && latitude <= b.North &&
		longitude >= b.West && longitude <= b.East
}

// Filters narrows a bounding box query. Empty or "All" string filters and
// nil numeric filters are ignored.
type Filters struct {
	Status   string
	HomeType string
	MinPrice *float64
	MaxPrice *float64
	MinBeds  *int
}

func activeFilter(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && !strings.EqualFold(trimmed, "All")
}

// Matches reports whether the property passes every active filter.
func (f Filters) Matches(p Property) bool {
	if activeFilter(f.Status) && p.Status != f.Status {
		return false
	}
	if activeFilter(f.HomeType) && p.HomeType != f.HomeType {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinBeds != nil && p.Beds < *f.MinBeds {
		return false
	}
	return true
}

// Stats holds aggregate figures over every stored property.
type Stats struct {
	TotalProperties int64   `json:"total_properties"`
	ForSaleCount    int64   `json:"for_sale_count"`
	AvgPrice        float64 `json:"avg_price"`
	AvgPricePerSqft float64 `json:"avg_price_per_sqft"`
	CitiesCount     int64   `json:"cities_count"`
	StatesCount     int64   `json:"states_count"`
}
