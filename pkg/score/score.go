// Package score maps a property's return metrics to a bounded 0-100 deal
// score using a fixed tiered rubric.
package score

// Inputs holds the metrics the rubric grades.
type Inputs struct {
	CashOnCash      float64
	CapRate         float64
	DSCR            float64
	OnePercentRule  float64
	MonthlyCashFlow float64
}

// Tier awards Points when a metric is at least Min.
type Tier struct {
	Min    float64
	Points int
}

// Category is one graded metric. Tiers are ordered from the highest threshold
// down; only the first tier the metric qualifies for is awarded.
type Category struct {
	Name  string
	Tiers []Tier
	value func(Inputs) float64
}

// CategoryPoints reports the points a single category contributed.
type CategoryPoints struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Points int     `json:"points"`
	Max    int     `json:"max"`
}

// MaxScore is the sum of every category's top tier.
const MaxScore = 100

// Rubric is the fixed set of graded categories.
var Rubric = []Category{
	{
		Name:  "cashOnCash",
		Tiers: []Tier{{0.12, 30}, {0.08, 20}, {0.05, 10}},
		value: func(in Inputs) float64 { return in.CashOnCash },
	},
	{
		Name:  "capRate",
		Tiers: []Tier{{0.08, 25}, {0.06, 15}, {0.04, 5}},
		value: func(in Inputs) float64 { return in.CapRate },
	},
	{
		Name:  "dscr",
		Tiers: []Tier{{1.5, 20}, {1.25, 15}, {1.0, 5}},
		value: func(in Inputs) float64 { return in.DSCR },
	},
	{
		Name:  "onePercentRule",
		Tiers: []Tier{{0.01, 15}, {0.008, 8}},
		value: func(in Inputs) float64 { return in.OnePercentRule },
	},
	{
		Name:  "monthlyCashFlow",
		Tiers: []Tier{{300, 10}, {200, 5}},
		value: func(in Inputs) float64 { return in.MonthlyCashFlow },
	},
}

// Points returns the points earned by value in this category.
func (c Category) Points(value float64) int {
	for _, tier := range c.Tiers {
		if value >= tier.Min {
			return tier.Points
		}
	}
	return 0
}

// Max returns the points of the category's top tier.
func (c Category) Max() int {
	if len(c.Tiers) == 0 {
		return 0
	}
	return c.Tiers[0].Points
}

// Breakdown grades each category independently.
func Breakdown(in Inputs) []CategoryPoints {
	points := make([]CategoryPoints, 0, len(Rubric))
	for _, category := range Rubric {
		value := category.value(in)
		points = append(points, CategoryPoints{
			Name:   category.Name,
			Value:  value,
			Points: category.Points(value),
			Max:    category.Max(),
		})
	}
	return points
}

// Score returns the deal score: the sum of the points of every category.
func Score(in Inputs) int {
	return Total(Breakdown(in))
}

// Total sums the points of an already graded breakdown.
func Total(breakdown []CategoryPoints) int {
	total := 0
	for _, category := range breakdown {
		total += category.Points
	}
	return total
}
