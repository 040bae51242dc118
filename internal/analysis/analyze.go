package analysis

import (
	"github.com/iwvelando/deal-finder/pkg/expenses"
	"github.com/iwvelando/deal-finder/pkg/loans"
	"github.com/iwvelando/deal-finder/pkg/metrics"
	"github.com/iwvelando/deal-finder/pkg/rent"
	"github.com/iwvelando/deal-finder/pkg/score"
)

// Analyze runs the full analysis of property under assumptions. referenceYear
// is the calendar year building age is measured against when rent has to be
// estimated.
//
// A property with a non-positive price yields a degenerate analysis: every
// amount and ratio is zero, break-even occupancy is 1 and the score is 0.
func Analyze(property Property, assumptions Assumptions, referenceYear int) DealAnalysis {
	if property.Price <= 0 {
		return degenerate()
	}

	terms := loans.ComputeTerms(property.Price, assumptions.DownPaymentPercent,
		assumptions.ClosingCostPercent, assumptions.RehabBudget)
	monthlyMortgage := loans.CalculateMonthlyPayment(terms.LoanAmount,
		assumptions.InterestRate, assumptions.LoanTermYears)

	monthlyRent, source := ResolveRent(property, assumptions, referenceYear)

	costs := expenses.ComputeMonthly(property.Price, property.AnnualTaxes, property.MonthlyHOA,
		monthlyRent, assumptions.ExpenseRates())
	monthlyExpenses := costs.Total()

	m := metrics.Compute(metrics.Inputs{
		MonthlyRent:       monthlyRent,
		MonthlyExpenses:   monthlyExpenses,
		MonthlyMortgage:   monthlyMortgage,
		Price:             property.Price,
		TotalCashInvested: terms.TotalCashInvested,
		VacancyRate:       assumptions.VacancyRate,
	})

	breakdown := score.Breakdown(scoreInputs(m))
	dealScore := score.Total(breakdown)

	return DealAnalysis{
		DownPayment:       terms.DownPayment,
		LoanAmount:        terms.LoanAmount,
		ClosingCosts:      terms.ClosingCosts,
		TotalCashInvested: terms.TotalCashInvested,
		MonthlyMortgage:   monthlyMortgage,

		MonthlyRent:          monthlyRent,
		RentSource:           source,
		EffectiveGrossIncome: m.EffectiveGrossIncome,

		Expenses:        costs,
		MonthlyExpenses: monthlyExpenses,

		MonthlyNOI:         m.MonthlyNOI,
		AnnualNOI:          m.AnnualNOI,
		MonthlyCashFlow:    m.MonthlyCashFlow,
		AnnualCashFlow:     m.AnnualCashFlow,
		CapRate:            m.CapRate,
		CashOnCash:         m.CashOnCash,
		DSCR:               m.DSCR,
		BreakEvenOccupancy: m.BreakEvenOccupancy,
		OnePercentRule:     m.OnePercentRule,
		PassesOnePercent:   m.PassesOnePercent,

		DealScore:      dealScore,
		ScoreBreakdown: breakdown,
		Rating:         score.Rate(dealScore),
	}
}

// ResolveRent picks the monthly rent for an analysis: the assumptions'
// explicit rent, then the property's known rent, then the heuristic estimate
// for one unit multiplied by the unit count. A property without a unit count
// is treated as a single unit. The result is never negative.
func ResolveRent(property Property, assumptions Assumptions, referenceYear int) (float64, RentSource) {
	switch {
	case assumptions.EstimatedRent != nil && *assumptions.EstimatedRent != 0:
		return nonNegative(*assumptions.EstimatedRent), RentSourceOverride
	case property.KnownMonthlyRent != nil && *property.KnownMonthlyRent != 0:
		return nonNegative(*property.KnownMonthlyRent), RentSourceListing
	}

	units := property.Units
	if units <= 0 {
		units = 1
	}
	estimate := rent.Estimate(property.Area, property.Beds, property.Baths, property.YearBuilt, referenceYear)
	return nonNegative(estimate * float64(units)), RentSourceEstimate
}

func scoreInputs(m metrics.Metrics) score.Inputs {
	return score.Inputs{
		CashOnCash:      m.CashOnCash,
		CapRate:         m.CapRate,
		DSCR:            m.DSCR,
		OnePercentRule:  m.OnePercentRule,
		MonthlyCashFlow: m.MonthlyCashFlow,
	}
}

func degenerate() DealAnalysis {
	return DealAnalysis{
		BreakEvenOccupancy: 1,
		ScoreBreakdown:     score.Breakdown(score.Inputs{}),
		Rating:             score.Rate(0),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
