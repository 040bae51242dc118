// Package rent provides a heuristic monthly rent projection from a property's
// physical attributes.
package rent

import "math"

const (
	// BaseRatePerSqft is the monthly rent per square foot before the age adjustment.
	BaseRatePerSqft = 1.20

	// BedroomPremium is added per bedroom above two (subtracted below two).
	BedroomPremium = 100.0

	// BathroomPremium is added per bathroom above one (subtracted below one).
	BathroomPremium = 50.0
)

// AgeMultiplier returns the rate adjustment for a building of the given age in
// years: newer than 10 years earns a premium, 30 years or older a discount.
func AgeMultiplier(age int) float64 {
	switch {
	case age < 10:
		return 1.15
	case age < 30:
		return 1.00
	default:
		return 0.90
	}
}

// Estimate projects the monthly rent of a single unit. referenceYear is the
// calendar year the building age is measured against; callers normally pass
// the current year. The result is rounded to a whole currency unit.
func Estimate(area float64, beds int, baths float64, yearBuilt, referenceYear int) float64 {
	rate := BaseRatePerSqft * AgeMultiplier(referenceYear-yearBuilt)

	estimate := area * rate
	estimate += float64(beds-2) * BedroomPremium
	estimate += (baths - 1) * BathroomPremium

	return math.Round(estimate)
}
