// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/deal-finder/internal/store"
	"github.com/iwvelando/deal-finder/pkg/output"
)

// FindResult finds a result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []output.Result, name string) *output.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// Listings returns a small set of stored listings spread over two cities.
// Springfield listings fall inside SpringfieldBox; the Madison one does not.
func Listings() []store.Property {
	rent := 3200.0
	return []store.Property{
		{
			Address: "100 Main St", Street: "100 Main St", City: "Springfield", State: "IL", Zip: "62701",
			Latitude: 39.80, Longitude: -89.64, ForSale: true, Status: "For Sale",
			Price: 300000, Sqft: 1500, Beds: 3, Baths: 2, HomeType: "Single Family",
			YearBuilt: 2010, EstimatedTaxes: 3000, Units: 1,
		},
		{
			Address: "200 Oak Ave", Street: "200 Oak Ave", City: "Springfield", State: "IL", Zip: "62702",
			Latitude: 39.81, Longitude: -89.65, ForSale: true, Status: "For Sale",
			Price: 150000, Sqft: 1000, Beds: 2, Baths: 1, HomeType: "Condo",
			YearBuilt: 1985, EstimatedTaxes: 1800, HOA: 200, Units: 1,
		},
		{
			Address: "400 Lake Dr", Street: "400 Lake Dr", City: "Madison", State: "WI", Zip: "53703",
			Latitude: 43.07, Longitude: -89.40, ForSale: true, Status: "For Sale",
			Price: 410000, Sqft: 2200, Beds: 4, Baths: 3, HomeType: "Multi Family",
			YearBuilt: 2015, EstimatedTaxes: 6000, Units: 2, EstimatedMonthlyRent: &rent,
		},
	}
}

// SpringfieldBox bounds the Springfield listings returned by Listings.
var SpringfieldBox = store.BoundingBox{North: 40, South: 39.5, East: -89.5, West: -90}
