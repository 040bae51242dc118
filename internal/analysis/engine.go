package analysis

import (
	"time"

	"go.uber.org/zap"
)

// Engine runs analyses for the API and CLI. It resolves the reference year
// used by the rent estimate and logs each run. An Engine holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	logger        *zap.Logger
	now           func() time.Time
	referenceYear int
}

// Option configures an Engine.
type Option func(*Engine)

// WithReferenceYear pins the reference year. Zero or negative values are
// ignored and the clock is used instead.
func WithReferenceYear(year int) Option {
	return func(e *Engine) {
		if year > 0 {
			e.referenceYear = year
		}
	}
}

// WithClock sets the clock the reference year is read from when no fixed
// year is configured.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReferenceYear returns the year building age is measured against.
func (e *Engine) ReferenceYear() int {
	if e.referenceYear > 0 {
		return e.referenceYear
	}
	return e.now().Year()
}

// Analyze runs the analysis of property under assumptions.
func (e *Engine) Analyze(property Property, assumptions Assumptions) DealAnalysis {
	year := e.ReferenceYear()
	result := Analyze(property, assumptions, year)

	if property.Price <= 0 {
		e.logger.Debug("non-positive price, returning empty analysis",
			zap.String("op", "analysis.Analyze"),
			zap.Float64("price", property.Price),
		)
		return result
	}

	e.logger.Debug("analysis computed",
		zap.String("op", "analysis.Analyze"),
		zap.Float64("price", property.Price),
		zap.Float64("monthlyRent", result.MonthlyRent),
		zap.String("rentSource", string(result.RentSource)),
		zap.Float64("monthlyCashFlow", result.MonthlyCashFlow),
		zap.Int("dealScore", result.DealScore),
		zap.Int("referenceYear", year),
	)
	return result
}

// AnalyzeAll analyzes each property under the same assumptions, preserving
// order.
func (e *Engine) AnalyzeAll(properties []Property, assumptions Assumptions) []DealAnalysis {
	results := make([]DealAnalysis, 0, len(properties))
	for _, property := range properties {
		results = append(results, e.Analyze(property, assumptions))
	}
	return results
}
