package server

import (
	"fmt"

	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/internal/store"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/datetime"
	"github.com/iwvelando/deal-finder/pkg/expenses"
	"github.com/iwvelando/deal-finder/pkg/mathutil"
	"github.com/iwvelando/deal-finder/pkg/score"
)

// propertyPayload is a listing as submitted by clients.
type propertyPayload struct {
	Address   string  `json:"address"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	ForSale      *bool  `json:"for_sale,omitempty"`
	Status       string `json:"status"`
	DateListed   string `json:"date_listed,omitempty"`
	DaysOnMarket int    `json:"days_on_market"`

	Price        float64 `json:"price"`
	Sqft         int     `json:"sqft"`
	Beds         int     `json:"beds"`
	Baths        float64 `json:"baths"`
	PricePerSqft float64 `json:"price_per_sqft"`
	LotSize      int     `json:"lot_size"`
	HOA          float64 `json:"hoa"`

	HomeType       string  `json:"home_type"`
	HomeDesign     string  `json:"home_design,omitempty"`
	EstimatedTaxes float64 `json:"estimated_taxes"`
	YearBuilt      int     `json:"year_built"`
	Units          *int    `json:"units,omitempty"`

	LastSoldDate   string   `json:"last_sold_date,omitempty"`
	LastSoldAmount *float64 `json:"last_sold_amount,omitempty"`

	EstimatedMonthlyRent *float64 `json:"estimated_monthly_rent,omitempty"`
}

func (p propertyPayload) units() int {
	if p.Units == nil {
		return 1
	}
	return *p.Units
}

func (p propertyPayload) toAnalysisProperty() analysis.Property {
	return analysis.Property{
		Price:            p.Price,
		Area:             float64(p.Sqft),
		Beds:             p.Beds,
		Baths:            p.Baths,
		YearBuilt:        p.YearBuilt,
		AnnualTaxes:      p.EstimatedTaxes,
		MonthlyHOA:       p.HOA,
		Units:            p.units(),
		KnownMonthlyRent: p.EstimatedMonthlyRent,
	}
}

func (p propertyPayload) toStoreProperty() (store.Property, error) {
	dateListed, err := datetime.ParseOptionalDate(p.DateListed)
	if err != nil {
		return store.Property{}, fmt.Errorf("invalid date_listed: %w", err)
	}
	lastSold, err := datetime.ParseOptionalDate(p.LastSoldDate)
	if err != nil {
		return store.Property{}, fmt.Errorf("invalid last_sold_date: %w", err)
	}

	forSale := true
	if p.ForSale != nil {
		forSale = *p.ForSale
	}

	return store.Property{
		Address:              p.Address,
		Street:               p.Street,
		City:                 p.City,
		State:                p.State,
		Zip:                  p.Zip,
		Latitude:             p.Latitude,
		Longitude:            p.Longitude,
		ForSale:              forSale,
		Status:               p.Status,
		DateListed:           dateListed,
		DaysOnMarket:         p.DaysOnMarket,
		Price:                p.Price,
		Sqft:                 p.Sqft,
		Beds:                 p.Beds,
		Baths:                p.Baths,
		PricePerSqft:         p.PricePerSqft,
		LotSize:              p.LotSize,
		HOA:                  p.HOA,
		HomeType:             p.HomeType,
		HomeDesign:           p.HomeDesign,
		EstimatedTaxes:       p.EstimatedTaxes,
		YearBuilt:            p.YearBuilt,
		Units:                p.units(),
		LastSoldDate:         lastSold,
		LastSoldAmount:       p.LastSoldAmount,
		EstimatedMonthlyRent: p.EstimatedMonthlyRent,
	}, nil
}

type analyzeRequest struct {
	Property    propertyPayload               `json:"property"`
	Assumptions *analysis.AssumptionOverrides `json:"assumptions,omitempty"`
}

type expenseResponse struct {
	Taxes       float64 `json:"taxes"`
	Insurance   float64 `json:"insurance"`
	HOA         float64 `json:"hoa"`
	Maintenance float64 `json:"maintenance"`
	Capex       float64 `json:"capex"`
	Management  float64 `json:"management"`
}

type analysisResponse struct {
	DownPayment       float64 `json:"downPayment"`
	LoanAmount        float64 `json:"loanAmount"`
	ClosingCosts      float64 `json:"closingCosts"`
	TotalCashInvested float64 `json:"totalCashInvested"`
	MonthlyMortgage   float64 `json:"monthlyMortgage"`

	MonthlyRent          float64 `json:"monthlyRent"`
	RentSource           string  `json:"rentSource"`
	EffectiveGrossIncome float64 `json:"effectiveGrossIncome"`

	Expenses        expenseResponse `json:"expenses"`
	MonthlyExpenses float64         `json:"monthlyExpenses"`

	MonthlyNOI         float64 `json:"monthlyNOI"`
	AnnualNOI          float64 `json:"annualNOI"`
	MonthlyCashFlow    float64 `json:"monthlyCashFlow"`
	AnnualCashFlow     float64 `json:"annualCashFlow"`
	CapRate            float64 `json:"capRate"`
	CashOnCash         float64 `json:"cashOnCash"`
	DSCR               float64 `json:"dscr"`
	BreakEvenOccupancy float64 `json:"breakEvenOccupancy"`
	OnePercentRule     float64 `json:"onePercentRule"`
	PassesOnePercent   bool    `json:"passesOnePercent"`

	DealScore      int                    `json:"dealScore"`
	ScoreBreakdown []score.CategoryPoints `json:"scoreBreakdown"`
	Rating         score.Rating           `json:"rating"`
}

func money(v float64) float64 { return mathutil.RoundTo(v, constants.MoneyPlaces) }

func ratio(v float64) float64 { return mathutil.RoundTo(v, constants.RatioPlaces) }

func coverage(v float64) float64 { return mathutil.RoundTo(v, constants.CoveragePlaces) }

func roundExpenses(b expenses.Breakdown) expenseResponse {
	return expenseResponse{
		Taxes:       money(b.Taxes),
		Insurance:   money(b.Insurance),
		HOA:         money(b.HOA),
		Maintenance: money(b.Maintenance),
		Capex:       money(b.Capex),
		Management:  money(b.Management),
	}
}

func newAnalysisResponse(a analysis.DealAnalysis) analysisResponse {
	breakdown := make([]score.CategoryPoints, 0, len(a.ScoreBreakdown))
	for _, c := range a.ScoreBreakdown {
		c.Value = mathutil.RoundTo(c.Value, constants.RatioPlaces)
		breakdown = append(breakdown, c)
	}

	return analysisResponse{
		DownPayment:          money(a.DownPayment),
		LoanAmount:           money(a.LoanAmount),
		ClosingCosts:         money(a.ClosingCosts),
		TotalCashInvested:    money(a.TotalCashInvested),
		MonthlyMortgage:      money(a.MonthlyMortgage),
		MonthlyRent:          money(a.MonthlyRent),
		RentSource:           string(a.RentSource),
		EffectiveGrossIncome: money(a.EffectiveGrossIncome),
		Expenses:             roundExpenses(a.Expenses),
		MonthlyExpenses:      money(a.MonthlyExpenses),
		MonthlyNOI:           money(a.MonthlyNOI),
		AnnualNOI:            money(a.AnnualNOI),
		MonthlyCashFlow:      money(a.MonthlyCashFlow),
		AnnualCashFlow:       money(a.AnnualCashFlow),
		CapRate:              ratio(a.CapRate),
		CashOnCash:           ratio(a.CashOnCash),
		DSCR:                 coverage(a.DSCR),
		BreakEvenOccupancy:   ratio(a.BreakEvenOccupancy),
		OnePercentRule:       ratio(a.OnePercentRule),
		PassesOnePercent:     a.PassesOnePercent,
		DealScore:            a.DealScore,
		ScoreBreakdown:       breakdown,
		Rating:               a.Rating,
	}
}

// analysisSummary is the per-listing figure set shown on the map.
type analysisSummary struct {
	DealScore       int     `json:"dealScore"`
	CapRate         float64 `json:"capRate"`
	CashOnCash      float64 `json:"cashOnCash"`
	MonthlyCashFlow float64 `json:"monthlyCashFlow"`
	MonthlyMortgage float64 `json:"monthlyMortgage"`
	DSCR            float64 `json:"dscr"`
	MonthlyRent     float64 `json:"monthlyRent"`
}

func newAnalysisSummary(a analysis.DealAnalysis) analysisSummary {
	return analysisSummary{
		DealScore:       a.DealScore,
		CapRate:         ratio(a.CapRate),
		CashOnCash:      ratio(a.CashOnCash),
		MonthlyCashFlow: money(a.MonthlyCashFlow),
		MonthlyMortgage: money(a.MonthlyMortgage),
		DSCR:            coverage(a.DSCR),
		MonthlyRent:     money(a.MonthlyRent),
	}
}

type propertyResponse struct {
	ID        int64   `json:"id"`
	Address   string  `json:"address"`
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zip       string  `json:"zip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	ForSale      bool    `json:"forSale"`
	Status       string  `json:"status"`
	DateListed   *string `json:"dateListed"`
	DaysOnMarket int     `json:"daysOnMarket"`

	Price        float64 `json:"price"`
	Sqft         int     `json:"sqft"`
	Beds         int     `json:"beds"`
	Baths        float64 `json:"baths"`
	PricePerSqft float64 `json:"pricePerSqft"`
	LotSize      int     `json:"lotSize"`
	HOA          float64 `json:"hoa"`

	HomeType       string  `json:"homeType"`
	HomeDesign     string  `json:"homeDesign"`
	EstimatedTaxes float64 `json:"estimatedTaxes"`
	YearBuilt      int     `json:"yearBuilt"`
	Units          int     `json:"units"`

	LastSoldDate   *string  `json:"lastSoldDate"`
	LastSoldAmount *float64 `json:"lastSoldAmount"`

	EstimatedMonthlyRent *float64 `json:"estimatedMonthlyRent"`

	Analysis analysisSummary `json:"analysis"`
}

func newPropertyResponse(p store.Property, a analysis.DealAnalysis) propertyResponse {
	return propertyResponse{
		ID:                   p.ID,
		Address:              p.Address,
		Street:               p.Street,
		City:                 p.City,
		State:                p.State,
		Zip:                  p.Zip,
		Latitude:             p.Latitude,
		Longitude:            p.Longitude,
		ForSale:              p.ForSale,
		Status:               p.Status,
		DateListed:           datetime.FormatOptionalDate(p.DateListed),
		DaysOnMarket:         p.DaysOnMarket,
		Price:                p.Price,
		Sqft:                 p.Sqft,
		Beds:                 p.Beds,
		Baths:                p.Baths,
		PricePerSqft:         money(p.PricePerSqft),
		LotSize:              p.LotSize,
		HOA:                  p.HOA,
		HomeType:             p.HomeType,
		HomeDesign:           p.HomeDesign,
		EstimatedTaxes:       p.EstimatedTaxes,
		YearBuilt:            p.YearBuilt,
		Units:                p.Units,
		LastSoldDate:         datetime.FormatOptionalDate(p.LastSoldDate),
		LastSoldAmount:       p.LastSoldAmount,
		EstimatedMonthlyRent: p.EstimatedMonthlyRent,
		Analysis:             newAnalysisSummary(a),
	}
}

type createResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
