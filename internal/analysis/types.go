// Package analysis turns a property and a set of investor assumptions into a
// deal analysis: financing terms, operating costs, return metrics and a
// composite deal score.
package analysis

import (
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/expenses"
	"github.com/iwvelando/deal-finder/pkg/score"
)

// Property holds the physical and cost attributes of a property that the
// analysis depends on.
type Property struct {
	Price       float64
	Area        float64 // livable square feet
	Beds        int
	Baths       float64
	YearBuilt   int
	AnnualTaxes float64
	MonthlyHOA  float64
	Units       int
	// KnownMonthlyRent is the listing's own rent figure, if any.
	KnownMonthlyRent *float64
}

// Assumptions holds the investor's financing and operating assumptions. All
// percentages are fractions (0.25 for 25%).
type Assumptions struct {
	DownPaymentPercent float64
	InterestRate       float64
	LoanTermYears      int
	ClosingCostPercent float64
	RehabBudget        float64
	VacancyRate        float64
	MaintenancePercent float64
	CapexPercent       float64
	ManagementPercent  float64
	InsuranceRate      float64
	// EstimatedRent overrides every other rent source when set and nonzero.
	EstimatedRent *float64
}

// DefaultAssumptions returns the standard investor assumptions.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DownPaymentPercent: constants.DefaultDownPaymentPercent,
		InterestRate:       constants.DefaultInterestRate,
		LoanTermYears:      constants.DefaultLoanTermYears,
		ClosingCostPercent: constants.DefaultClosingCostPercent,
		RehabBudget:        constants.DefaultRehabBudget,
		VacancyRate:        constants.DefaultVacancyRate,
		MaintenancePercent: constants.DefaultMaintenancePercent,
		CapexPercent:       constants.DefaultCapexPercent,
		ManagementPercent:  constants.DefaultManagementPercent,
		InsuranceRate:      constants.DefaultInsuranceRate,
	}
}

// ExpenseRates returns the cost fractions used by the expense model.
func (a Assumptions) ExpenseRates() expenses.Rates {
	return expenses.Rates{
		InsuranceRate:      a.InsuranceRate,
		MaintenancePercent: a.MaintenancePercent,
		CapexPercent:       a.CapexPercent,
		ManagementPercent:  a.ManagementPercent,
	}
}

// AssumptionOverrides holds a partial set of assumptions. Nil fields keep the
// value of the assumptions they are applied to.
type AssumptionOverrides struct {
	DownPaymentPercent *float64 `json:"down_payment_percent,omitempty" yaml:"downPaymentPercent,omitempty" mapstructure:"downPaymentPercent"`
	InterestRate       *float64 `json:"interest_rate,omitempty" yaml:"interestRate,omitempty" mapstructure:"interestRate"`
	LoanTermYears      *int     `json:"loan_term_years,omitempty" yaml:"loanTermYears,omitempty" mapstructure:"loanTermYears"`
	ClosingCostPercent *float64 `json:"closing_cost_percent,omitempty" yaml:"closingCostPercent,omitempty" mapstructure:"closingCostPercent"`
	RehabBudget        *float64 `json:"rehab_budget,omitempty" yaml:"rehabBudget,omitempty" mapstructure:"rehabBudget"`
	VacancyRate        *float64 `json:"vacancy_rate,omitempty" yaml:"vacancyRate,omitempty" mapstructure:"vacancyRate"`
	MaintenancePercent *float64 `json:"maintenance_percent,omitempty" yaml:"maintenancePercent,omitempty" mapstructure:"maintenancePercent"`
	CapexPercent       *float64 `json:"capex_percent,omitempty" yaml:"capexPercent,omitempty" mapstructure:"capexPercent"`
	ManagementPercent  *float64 `json:"management_percent,omitempty" yaml:"managementPercent,omitempty" mapstructure:"managementPercent"`
	InsuranceRate      *float64 `json:"insurance_rate,omitempty" yaml:"insuranceRate,omitempty" mapstructure:"insuranceRate"`
	EstimatedRent      *float64 `json:"estimated_rent,omitempty" yaml:"estimatedRent,omitempty" mapstructure:"estimatedRent"`
}

// Apply returns base with every set override replaced.
func (o AssumptionOverrides) Apply(base Assumptions) Assumptions {
	result := base
	setFloat(&result.DownPaymentPercent, o.DownPaymentPercent)
	setFloat(&result.InterestRate, o.InterestRate)
	if o.LoanTermYears != nil {
		result.LoanTermYears = *o.LoanTermYears
	}
	setFloat(&result.ClosingCostPercent, o.ClosingCostPercent)
	setFloat(&result.RehabBudget, o.RehabBudget)
	setFloat(&result.VacancyRate, o.VacancyRate)
	setFloat(&result.MaintenancePercent, o.MaintenancePercent)
	setFloat(&result.CapexPercent, o.CapexPercent)
	setFloat(&result.ManagementPercent, o.ManagementPercent)
	setFloat(&result.InsuranceRate, o.InsuranceRate)
	if o.EstimatedRent != nil {
		rent := *o.EstimatedRent
		result.EstimatedRent = &rent
	}
	return result
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// RentSource names where the monthly rent used by an analysis came from.
type RentSource string

const (
	// RentSourceOverride is the assumptions' explicit rent.
	RentSourceOverride RentSource = "override"
	// RentSourceListing is the property's own known rent.
	RentSourceListing RentSource = "listing"
	// RentSourceEstimate is the heuristic estimate times the unit count.
	RentSourceEstimate RentSource = "estimate"
)

// DealAnalysis holds every derived figure of an analysis.
type DealAnalysis struct {
	// Financing
	DownPayment       float64
	LoanAmount        float64
	ClosingCosts      float64
	TotalCashInvested float64
	MonthlyMortgage   float64

	// Income
	MonthlyRent          float64
	RentSource           RentSource
	EffectiveGrossIncome float64

	// Expenses
	Expenses        expenses.Breakdown
	MonthlyExpenses float64

	// Returns
	MonthlyNOI         float64
	AnnualNOI          float64
	MonthlyCashFlow    float64
	AnnualCashFlow     float64
	CapRate            float64
	CashOnCash         float64
	DSCR               float64
	BreakEvenOccupancy float64
	OnePercentRule     float64
	PassesOnePercent   bool

	DealScore      int
	ScoreBreakdown []score.CategoryPoints
	Rating         score.Rating
}

// Values returns every numeric figure of the analysis keyed by name, for
// checks that must hold across all fields.
func (d DealAnalysis) Values() map[string]float64 {
	return map[string]float64{
		"downPayment":          d.DownPayment,
		"loanAmount":           d.LoanAmount,
		"closingCosts":         d.ClosingCosts,
		"totalCashInvested":    d.TotalCashInvested,
		"monthlyMortgage":      d.MonthlyMortgage,
		"monthlyRent":          d.MonthlyRent,
		"effectiveGrossIncome": d.EffectiveGrossIncome,
		"monthlyExpenses":      d.MonthlyExpenses,
		"monthlyNOI":           d.MonthlyNOI,
		"annualNOI":            d.AnnualNOI,
		"monthlyCashFlow":      d.MonthlyCashFlow,
		"annualCashFlow":       d.AnnualCashFlow,
		"capRate":              d.CapRate,
		"cashOnCash":           d.CashOnCash,
		"dscr":                 d.DSCR,
		"breakEvenOccupancy":   d.BreakEvenOccupancy,
		"onePercentRule":       d.OnePercentRule,
		"dealScore":            float64(d.DealScore),
	}
}
