package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/deal-finder/internal/analysis"
)

// ValidateProperty checks a property before it is analyzed or stored. Every
// problem found is reported in the joined error.
func ValidateProperty(p analysis.Property) error {
	var errs []error

	errs = append(errs, finite("price", p.Price), finite("area", p.Area), finite("baths", p.Baths),
		finite("annual taxes", p.AnnualTaxes), finite("monthly HOA", p.MonthlyHOA))

	if p.Price < 0 {
		errs = append(errs, fmt.Errorf("price must not be negative, got %v", p.Price))
	}
	if p.Area <= 0 {
		errs = append(errs, fmt.Errorf("area must be positive, got %v", p.Area))
	}
	if p.Beds < 0 {
		errs = append(errs, fmt.Errorf("beds must not be negative, got %d", p.Beds))
	}
	if p.Baths < 0 {
		errs = append(errs, fmt.Errorf("baths must not be negative, got %v", p.Baths))
	}
	if p.AnnualTaxes < 0 {
		errs = append(errs, fmt.Errorf("annual taxes must not be negative, got %v", p.AnnualTaxes))
	}
	if p.MonthlyHOA < 0 {
		errs = append(errs, fmt.Errorf("monthly HOA must not be negative, got %v", p.MonthlyHOA))
	}
	if p.Units < 0 {
		errs = append(errs, fmt.Errorf("units must not be negative, got %d", p.Units))
	}
	if p.KnownMonthlyRent != nil {
		errs = append(errs, nonNegative("known monthly rent", *p.KnownMonthlyRent))
	}

	return errors.Join(errs...)
}

// ValidateAssumptions checks investor assumptions. Every problem found is
// reported in the joined error.
func ValidateAssumptions(a analysis.Assumptions) error {
	var errs []error

	fractions := []struct {
		name  string
		value float64
	}{
		{"down payment percent", a.DownPaymentPercent},
		{"interest rate", a.InterestRate},
		{"closing cost percent", a.ClosingCostPercent},
		{"vacancy rate", a.VacancyRate},
		{"maintenance percent", a.MaintenancePercent},
		{"capex percent", a.CapexPercent},
		{"management percent", a.ManagementPercent},
		{"insurance rate", a.InsuranceRate},
	}
	for _, f := range fractions {
		errs = append(errs, fraction(f.name, f.value))
	}

	if a.LoanTermYears <= 0 {
		errs = append(errs, fmt.Errorf("loan term must be at least one year, got %d", a.LoanTermYears))
	}
	errs = append(errs, nonNegative("rehab budget", a.RehabBudget))
	if a.EstimatedRent != nil {
		errs = append(errs, nonNegative("estimated rent", *a.EstimatedRent))
	}

	return errors.Join(errs...)
}

func finite(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	return nil
}

func nonNegative(name string, value float64) error {
	if err := finite(name, value); err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("%s must not be negative, got %v", name, value)
	}
	return nil
}

// fraction requires a value in [0, 1].
func fraction(name string, value float64) error {
	if err := finite(name, value); err != nil {
		return err
	}
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %v", name, value)
	}
	return nil
}

// ValidateCoordinates checks a latitude/longitude pair.
func ValidateCoordinates(latitude, longitude float64) error {
	var errs []error
	if err := finite("latitude", latitude); err != nil {
		errs = append(errs, err)
	} else if latitude < -90 || latitude > 90 {
		errs = append(errs, fmt.Errorf("latitude must be between -90 and 90, got %v", latitude))
	}
	if err := finite("longitude", longitude); err != nil {
		errs = append(errs, err)
	} else if longitude < -180 || longitude > 180 {
		errs = append(errs, fmt.Errorf("longitude must be between -180 and 180, got %v", longitude))
	}
	return errors.Join(errs...)
}
