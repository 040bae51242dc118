// Package expenses aggregates the recurring monthly operating costs of a
// rental property.
package expenses

import (
	"github.com/iwvelando/deal-finder/pkg/mathutil"
)

// Rates holds the fractional cost assumptions. Insurance, maintenance and
// capex are annual fractions of the purchase price; management is a fraction
// of monthly rent.
type Rates struct {
	InsuranceRate      float64
	MaintenancePercent float64
	CapexPercent       float64
	ManagementPercent  float64
}

// Breakdown holds each monthly operating cost line item.
type Breakdown struct {
	Taxes       float64 `json:"taxes" yaml:"taxes"`
	Insurance   float64 `json:"insurance" yaml:"insurance"`
	HOA         float64 `json:"hoa" yaml:"hoa"`
	Maintenance float64 `json:"maintenance" yaml:"maintenance"`
	Capex       float64 `json:"capex" yaml:"capex"`
	Management  float64 `json:"management" yaml:"management"`
}

// ComputeMonthly derives the monthly operating costs for a property. hoa is
// already a monthly figure; annualTaxes is converted to a monthly share.
func ComputeMonthly(price, annualTaxes, hoa, monthlyRent float64, rates Rates) Breakdown {
	return Breakdown{
		Taxes:       mathutil.Monthly(annualTaxes),
		Insurance:   mathutil.Monthly(price * rates.InsuranceRate),
		HOA:         hoa,
		Maintenance: mathutil.Monthly(price * rates.MaintenancePercent),
		Capex:       mathutil.Monthly(price * rates.CapexPercent),
		Management:  monthlyRent * rates.ManagementPercent,
	}
}

// Total returns the sum of all line items.
func (b Breakdown) Total() float64 {
	return b.Taxes + b.Insurance + b.HOA + b.Maintenance + b.Capex + b.Management
}
