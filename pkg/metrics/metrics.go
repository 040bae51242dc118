// Package metrics derives income, cash-flow and return ratios for a rental
// property from its monthly rent, operating costs and debt service.
package metrics

import (
	"github.com/iwvelando/deal-finder/pkg/mathutil"
)

// OnePercentThreshold is the monthly rent to price ratio a property must reach
// to pass the 1% rule.
const OnePercentThreshold = 0.01

// Inputs holds the monthly figures the ratios are derived from.
type Inputs struct {
	MonthlyRent       float64
	MonthlyExpenses   float64
	MonthlyMortgage   float64
	Price             float64
	TotalCashInvested float64
	VacancyRate       float64
}

// Metrics holds the derived income and return figures.
type Metrics struct {
	EffectiveGrossIncome float64
	MonthlyNOI           float64
	AnnualNOI            float64
	MonthlyCashFlow      float64
	AnnualCashFlow       float64
	CapRate              float64
	CashOnCash           float64
	DSCR                 float64
	BreakEvenOccupancy   float64
	OnePercentRule       float64
	PassesOnePercent     bool
}

// Compute derives every metric from in. Each ratio whose denominator is not
// positive takes a fixed fallback instead of dividing:
//
//	CapRate, OnePercentRule   0 when Price <= 0
//	CashOnCash                0 when TotalCashInvested <= 0
//	DSCR                      0 when MonthlyMortgage <= 0
//	BreakEvenOccupancy        1 when MonthlyRent <= 0
func Compute(in Inputs) Metrics {
	var m Metrics

	m.EffectiveGrossIncome = in.MonthlyRent * (1 - in.VacancyRate)
	m.MonthlyNOI = m.EffectiveGrossIncome - in.MonthlyExpenses
	m.AnnualNOI = mathutil.Annual(m.MonthlyNOI)
	m.MonthlyCashFlow = m.MonthlyNOI - in.MonthlyMortgage
	m.AnnualCashFlow = mathutil.Annual(m.MonthlyCashFlow)

	m.CapRate = mathutil.Ratio(m.AnnualNOI, in.Price, 0)
	m.CashOnCash = mathutil.Ratio(m.AnnualCashFlow, in.TotalCashInvested, 0)
	m.DSCR = DSCR(m.AnnualNOI, in.MonthlyMortgage)
	m.BreakEvenOccupancy = mathutil.Ratio(in.MonthlyExpenses+in.MonthlyMortgage, in.MonthlyRent, 1)
	m.OnePercentRule = mathutil.Ratio(in.MonthlyRent, in.Price, 0)
	m.PassesOnePercent = m.OnePercentRule >= OnePercentThreshold

	return m
}

// DSCR returns the debt-service coverage ratio for the given annual NOI and
// monthly mortgage payment. With no debt service there is nothing to cover and
// the ratio is reported as 0, which earns no coverage points when scored.
func DSCR(annualNOI, monthlyMortgage float64) float64 {
	return mathutil.Ratio(annualNOI, mathutil.Annual(monthlyMortgage), 0)
}
