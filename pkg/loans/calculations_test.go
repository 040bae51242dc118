package loans

import (
	"math"
	"testing"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name          string
		principal     float64
		annualRate    float64
		termYears     int
		expectedRange []float64 // [min, max] expected range
	}{
		{
			name:          "Standard 30-year investor mortgage",
			principal:     225000,
			annualRate:    0.07,
			termYears:     30,
			expectedRange: []float64{1496.92, 1496.94}, // 1496.93
		},
		{
			name:          "15-year mortgage",
			principal:     240000,
			annualRate:    0.06,
			termYears:     15,
			expectedRange: []float64{2025, 2026}, // Around $2025.26
		},
		{
			name:          "Zero interest loan",
			principal:     36000,
			annualRate:    0.0,
			termYears:     3,
			expectedRange: []float64{1000, 1000},
		},
		{
			name:          "Fully paid in cash",
			principal:     0,
			annualRate:    0.07,
			termYears:     30,
			expectedRange: []float64{0, 0},
		},
		{
			name:          "High interest loan",
			principal:     10000,
			annualRate:    0.18,
			termYears:     3,
			expectedRange: []float64{361, 362}, // Around $361.52
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.annualRate, tt.termYears)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculateMonthlyPaymentZeroRateIsExact(t *testing.T) {
	principals := []float64{1, 1000, 123456.78, 225000, 999999.99}
	terms := []int{1, 5, 15, 30, 40}

	for _, principal := range principals {
		for _, term := range terms {
			got := CalculateMonthlyPayment(principal, 0, term)
			want := principal / float64(term*12)
			if got != want {
				t.Errorf("CalculateMonthlyPayment(%v, 0, %d) = %v, expected exactly %v", principal, term, got, want)
			}
		}
	}
}

func TestCalculateMonthlyPaymentScalesWithPrincipal(t *testing.T) {
	base := CalculateMonthlyPayment(100000, 0.065, 30)
	doubled := CalculateMonthlyPayment(200000, 0.065, 30)
	if math.Abs(doubled-2*base) > 1e-6 {
		t.Errorf("payment should be linear in principal: got %.6f, expected %.6f", doubled, 2*base)
	}
}

func TestCalculateMonthlyPaymentTinyRates(t *testing.T) {
	tests := []struct {
		name       string
		annualRate float64
	}{
		{"Rate below float resolution of 1+r", 1e-16},
		{"Rate just above float resolution", 1e-12},
		{"Rate of one basis point", 0.0001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMonthlyPayment(225000, tt.annualRate, 30)
			if math.IsInf(got, 0) || math.IsNaN(got) {
				t.Fatalf("CalculateMonthlyPayment() = %v, expected a finite payment", got)
			}
			zeroRate := 225000.0 / 360
			if got < zeroRate-1e-6 || got > zeroRate+10 {
				t.Errorf("CalculateMonthlyPayment() = %.6f, expected close to the zero-rate payment %.6f", got, zeroRate)
			}
		})
	}
}

func TestComputeTerms(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		down     float64
		closing  float64
		rehab    float64
		expected Terms
	}{
		{
			name:    "Default assumptions",
			price:   300000,
			down:    0.25,
			closing: 0.03,
			rehab:   0,
			expected: Terms{
				DownPayment:       75000,
				LoanAmount:        225000,
				ClosingCosts:      9000,
				TotalCashInvested: 84000,
			},
		},
		{
			name:    "Rehab budget adds to cash invested",
			price:   200000,
			down:    0.20,
			closing: 0.02,
			rehab:   15000,
			expected: Terms{
				DownPayment:       40000,
				LoanAmount:        160000,
				ClosingCosts:      4000,
				TotalCashInvested: 59000,
			},
		},
		{
			name:    "All cash purchase",
			price:   150000,
			down:    1.0,
			closing: 0.03,
			rehab:   0,
			expected: Terms{
				DownPayment:       150000,
				LoanAmount:        0,
				ClosingCosts:      4500,
				TotalCashInvested: 154500,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTerms(tt.price, tt.down, tt.closing, tt.rehab)
			if math.Abs(got.DownPayment-tt.expected.DownPayment) > 1e-6 ||
				math.Abs(got.LoanAmount-tt.expected.LoanAmount) > 1e-6 ||
				math.Abs(got.ClosingCosts-tt.expected.ClosingCosts) > 1e-6 ||
				math.Abs(got.TotalCashInvested-tt.expected.TotalCashInvested) > 1e-6 {
				t.Errorf("ComputeTerms() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}
