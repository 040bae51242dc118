package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"gopkg.in/yaml.v3"
)

func sampleResults() []Result {
	starter := analysis.Property{
		Price:       300000,
		Area:        1500,
		Beds:        3,
		Baths:       2,
		YearBuilt:   2010,
		AnnualTaxes: 3000,
		Units:       1,
	}
	rent := 3000.0
	duplex := analysis.Property{
		Price:            200000,
		Area:             1800,
		Beds:             4,
		Baths:            2,
		YearBuilt:        1990,
		AnnualTaxes:      2400,
		Units:            2,
		KnownMonthlyRent: &rent,
	}
	assumptions := analysis.DefaultAssumptions()
	return []Result{
		{Name: "Starter home", Property: starter, Analysis: analysis.Analyze(starter, assumptions, 2024)},
		{Name: "Duplex", Property: duplex, Analysis: analysis.Analyze(duplex, assumptions, 2024)},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := PrettyFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("PrettyFormat failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"--- Analysis for Starter home ---",
		"--- Analysis for Duplex ---",
		"Price                  | $300,000.00",
		"Monthly mortgage       | $1,496.93",
		"Monthly rent           | $1,950.00 (estimate)",
		"Monthly cash flow      | -$772.93",
		"Monthly rent           | $3,000.00 (listing)",
		"Deal score             | 0/100 (Poor)",
		"1% rule                | 0.65% (fail)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q\n%s", want, output)
		}
	}
	if strings.HasSuffix(output, "\n\n") {
		t.Errorf("PrettyFormat should not end with a blank separator line")
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("CsvFormat failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CsvFormat produced invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("unexpected header %v", records[0])
	}

	row := map[string]string{}
	for i, column := range csvHeader {
		row[column] = records[1][i]
	}
	expected := map[string]string{
		"name":               "Starter home",
		"price":              "300000.00",
		"monthly_rent":       "1950.00",
		"rent_source":        "estimate",
		"monthly_mortgage":   "1496.93",
		"monthly_cash_flow":  "-772.93",
		"cap_rate":           "0.0290",
		"dscr":               "0.48",
		"passes_one_percent": "false",
		"deal_score":         "0",
		"rating":             "Poor",
	}
	for column, want := range expected {
		if row[column] != want {
			t.Errorf("%s = %q, expected %q", column, row[column], want)
		}
	}
	if records[2][0] != "Duplex" || records[2][3] != "listing" {
		t.Errorf("unexpected duplex row %v", records[2])
	}
}

func TestYAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := YAMLFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("YAMLFormat failed: %v", err)
	}

	var reports []Report
	if err := yaml.Unmarshal(buf.Bytes(), &reports); err != nil {
		t.Fatalf("YAMLFormat produced invalid YAML: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].MonthlyMortgage != 1496.93 || reports[0].MonthlyCashFlow != -772.93 {
		t.Errorf("unexpected rounded figures: %+v", reports[0])
	}
	if reports[0].Expenses.Management != 195 || reports[0].Expenses.Taxes != 250 {
		t.Errorf("unexpected expense breakdown: %+v", reports[0].Expenses)
	}
	if reports[1].RentSource != "listing" {
		t.Errorf("RentSource = %q, expected listing", reports[1].RentSource)
	}
}

func TestWrite(t *testing.T) {
	for _, outputFormat := range []string{constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatYAML} {
		var buf bytes.Buffer
		if err := Write(&buf, outputFormat, sampleResults()); err != nil {
			t.Errorf("Write(%s) failed: %v", outputFormat, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) produced no output", outputFormat)
		}
	}
	if err := Write(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Error("expected error for unsupported format")
	}
}
