// Package output provides utilities for formatting and displaying deal analyses.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/expenses"
	"github.com/iwvelando/deal-finder/pkg/format"
	"github.com/iwvelando/deal-finder/pkg/mathutil"
	"gopkg.in/yaml.v3"
)

// Result is one analyzed property.
type Result struct {
	Name     string
	Property analysis.Property
	Analysis analysis.DealAnalysis
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []Result) error {
	money := format.Currency

	for i, result := range results {
		a := result.Analysis
		rows := [][2]string{
			{"Price", money(result.Property.Price)},
			{"Down payment", money(a.DownPayment)},
			{"Loan amount", money(a.LoanAmount)},
			{"Closing costs", money(a.ClosingCosts)},
			{"Total cash invested", money(a.TotalCashInvested)},
			{"Monthly mortgage", money(a.MonthlyMortgage)},
			{"Monthly rent", fmt.Sprintf("%s (%s)", money(a.MonthlyRent), a.RentSource)},
			{"Effective gross income", money(a.EffectiveGrossIncome)},
			{"Monthly expenses", money(a.MonthlyExpenses)},
			{"  Taxes", money(a.Expenses.Taxes)},
			{"  Insurance", money(a.Expenses.Insurance)},
			{"  HOA", money(a.Expenses.HOA)},
			{"  Maintenance", money(a.Expenses.Maintenance)},
			{"  CapEx", money(a.Expenses.Capex)},
			{"  Management", money(a.Expenses.Management)},
			{"Monthly NOI", money(a.MonthlyNOI)},
			{"Monthly cash flow", money(a.MonthlyCashFlow)},
			{"Annual cash flow", money(a.AnnualCashFlow)},
			{"Cap rate", format.Percent(a.CapRate, 2)},
			{"Cash on cash", format.Percent(a.CashOnCash, 2)},
			{"DSCR", strconv.FormatFloat(mathutil.RoundTo(a.DSCR, constants.CoveragePlaces), 'f', 2, 64)},
			{"Break-even occupancy", format.Percent(a.BreakEvenOccupancy, 1)},
			{"1% rule", fmt.Sprintf("%s (%s)", format.Percent(a.OnePercentRule, 2), passFail(a.PassesOnePercent))},
			{"Deal score", fmt.Sprintf("%d/100 (%s)", a.DealScore, a.Rating.Label)},
		}

		if _, err := fmt.Fprintf(w, "--- Analysis for %s ---\n", result.Name); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "%-22s | %s\n", row[0], row[1]); err != nil {
				return err
			}
		}
		if len(results) > 1 && i < len(results)-1 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func passFail(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}

// csvHeader lists the columns written by CsvFormat.
var csvHeader = []string{
	"name", "price", "monthly_rent", "rent_source", "monthly_mortgage",
	"monthly_expenses", "monthly_noi", "monthly_cash_flow", "annual_cash_flow",
	"cap_rate", "cash_on_cash", "dscr", "break_even_occupancy",
	"one_percent_rule", "passes_one_percent", "deal_score", "rating",
}

// CsvFormat writes one comma-separated row per result.
func CsvFormat(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	money := func(v float64) string {
		return strconv.FormatFloat(mathutil.RoundTo(v, constants.MoneyPlaces), 'f', 2, 64)
	}
	ratio := func(v float64) string {
		return strconv.FormatFloat(mathutil.RoundTo(v, constants.RatioPlaces), 'f', 4, 64)
	}

	for _, result := range results {
		a := result.Analysis
		record := []string{
			result.Name,
			money(result.Property.Price),
			money(a.MonthlyRent),
			string(a.RentSource),
			money(a.MonthlyMortgage),
			money(a.MonthlyExpenses),
			money(a.MonthlyNOI),
			money(a.MonthlyCashFlow),
			money(a.AnnualCashFlow),
			ratio(a.CapRate),
			ratio(a.CashOnCash),
			strconv.FormatFloat(mathutil.RoundTo(a.DSCR, constants.CoveragePlaces), 'f', 2, 64),
			strconv.FormatFloat(mathutil.RoundTo(a.BreakEvenOccupancy, constants.RatioPlaces), 'f', 4, 64),
			ratio(a.OnePercentRule),
			strconv.FormatBool(a.PassesOnePercent),
			strconv.Itoa(a.DealScore),
			a.Rating.Label,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// Report is the serialized form of a Result.
type Report struct {
	Name               string             `yaml:"name"`
	Price              float64            `yaml:"price"`
	MonthlyRent        float64            `yaml:"monthlyRent"`
	RentSource         string             `yaml:"rentSource"`
	MonthlyMortgage    float64            `yaml:"monthlyMortgage"`
	Expenses           expenses.Breakdown `yaml:"expenses"`
	MonthlyExpenses    float64            `yaml:"monthlyExpenses"`
	MonthlyNOI         float64            `yaml:"monthlyNOI"`
	MonthlyCashFlow    float64            `yaml:"monthlyCashFlow"`
	CapRate            float64            `yaml:"capRate"`
	CashOnCash         float64            `yaml:"cashOnCash"`
	DSCR               float64            `yaml:"dscr"`
	BreakEvenOccupancy float64            `yaml:"breakEvenOccupancy"`
	PassesOnePercent   bool               `yaml:"passesOnePercent"`
	DealScore          int                `yaml:"dealScore"`
	Rating             string             `yaml:"rating"`
}

// NewReport rounds a result for serialization.
func NewReport(result Result) Report {
	a := result.Analysis
	money := func(v float64) float64 { return mathutil.RoundTo(v, constants.MoneyPlaces) }
	return Report{
		Name:            result.Name,
		Price:           money(result.Property.Price),
		MonthlyRent:     money(a.MonthlyRent),
		RentSource:      string(a.RentSource),
		MonthlyMortgage: money(a.MonthlyMortgage),
		Expenses: expenses.Breakdown{
			Taxes:       money(a.Expenses.Taxes),
			Insurance:   money(a.Expenses.Insurance),
			HOA:         money(a.Expenses.HOA),
			Maintenance: money(a.Expenses.Maintenance),
			Capex:       money(a.Expenses.Capex),
			Management:  money(a.Expenses.Management),
		},
		MonthlyExpenses:    money(a.MonthlyExpenses),
		MonthlyNOI:         money(a.MonthlyNOI),
		MonthlyCashFlow:    money(a.MonthlyCashFlow),
		CapRate:            mathutil.RoundTo(a.CapRate, constants.RatioPlaces),
		CashOnCash:         mathutil.RoundTo(a.CashOnCash, constants.RatioPlaces),
		DSCR:               mathutil.RoundTo(a.DSCR, constants.CoveragePlaces),
		BreakEvenOccupancy: mathutil.RoundTo(a.BreakEvenOccupancy, constants.RatioPlaces),
		PassesOnePercent:   a.PassesOnePercent,
		DealScore:          a.DealScore,
		Rating:             a.Rating.Label,
	}
}

// YAMLFormat writes the results as a YAML list of reports.
func YAMLFormat(w io.Writer, results []Result) error {
	reports := make([]Report, 0, len(results))
	for _, result := range results {
		reports = append(reports, NewReport(result))
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return encoder.Close()
}

// Write dispatches to the writer for outputFormat.
func Write(w io.Writer, outputFormat string, results []Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, results)
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}
