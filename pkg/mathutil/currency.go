// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/shopspring/decimal"
)

// RoundTo rounds a value half away from zero to the given number of decimal
// places. Rounding goes through a decimal representation so that values such
// as 1.005 round to 1.01 rather than 1.00. Non-finite values are returned as 0.
func RoundTo(val float64, places int32) float64 {
	if !IsFinite(val) {
		return 0
	}
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// Ratio divides numerator by denominator, returning fallback when the
// denominator is not strictly positive.
func Ratio(numerator, denominator, fallback float64) float64 {
	if denominator <= 0 {
		return fallback
	}
	return numerator / denominator
}

// Monthly converts an annual amount to its monthly share.
func Monthly(annual float64) float64 {
	return annual / constants.MonthsPerYear
}

// Annual converts a monthly amount to its annual total.
func Annual(monthly float64) float64 {
	return monthly * constants.MonthsPerYear
}
