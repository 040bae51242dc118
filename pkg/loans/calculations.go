// Package loans provides fixed-rate mortgage calculations used to finance a
// property purchase.
package loans

import (
	"math"

	"github.com/iwvelando/deal-finder/pkg/constants"
)

// Terms holds the up-front financing figures for a purchase.
type Terms struct {
	DownPayment       float64
	LoanAmount        float64
	ClosingCosts      float64
	TotalCashInvested float64
}

// CalculateMonthlyPayment calculates the level monthly payment (principal and
// interest) for a fixed-rate loan using the standard amortization formula.
// annualRate is a fraction (0.07 for 7%). termYears must be positive; callers
// are expected to reject non-positive terms before calling.
func CalculateMonthlyPayment(principal, annualRate float64, termYears int) float64 {
	numPayments := float64(termYears * constants.MonthsPerYear)
	monthlyRate := annualRate / constants.MonthsPerYear

	if monthlyRate == 0 {
		// No compounding, the principal is spread evenly over the term.
		return principal / numPayments
	}

	// Log1p/Expm1 keep (1+r)^n - 1 nonzero for rates too small to move 1+r.
	exponent := numPayments * math.Log1p(monthlyRate)
	return principal * monthlyRate * math.Exp(exponent) / math.Expm1(exponent)
}

// ComputeTerms derives the down payment, loan amount, closing costs and total
// cash invested for a purchase at the given price.
func ComputeTerms(price, downPaymentPercent, closingCostPercent, rehabBudget float64) Terms {
	downPayment := price * downPaymentPercent
	closingCosts := price * closingCostPercent
	return Terms{
		DownPayment:       downPayment,
		LoanAmount:        price - downPayment,
		ClosingCosts:      closingCosts,
		TotalCashInvested: downPayment + closingCosts + rehabBudget,
	}
}
