// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for deal-finder.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	// ReferenceYear pins the year building age is measured against. Zero
	// uses the current year.
	ReferenceYear int                          `yaml:"referenceYear,omitempty"`
	Assumptions   analysis.AssumptionOverrides `yaml:"assumptions,omitempty"`
	Properties    []Property                   `yaml:"properties"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Property is a property to analyze. Assumptions set here override the
// top-level assumptions for this property only.
type Property struct {
	Name        string
	Price       float64
	Area        float64
	Beds        int
	Baths       float64
	YearBuilt   int     `mapstructure:"yearBuilt"`
	AnnualTaxes float64 `mapstructure:"annualTaxes"`
	MonthlyHOA  float64 `mapstructure:"monthlyHOA"`
	Units       int
	MonthlyRent *float64 `mapstructure:"monthlyRent"`
	Assumptions analysis.AssumptionOverrides
}

// ToAnalysisProperty returns the engine input for the property.
func (p Property) ToAnalysisProperty() analysis.Property {
	return analysis.Property{
		Price:            p.Price,
		Area:             p.Area,
		Beds:             p.Beds,
		Baths:            p.Baths,
		YearBuilt:        p.YearBuilt,
		AnnualTaxes:      p.AnnualTaxes,
		MonthlyHOA:       p.MonthlyHOA,
		Units:            p.Units,
		KnownMonthlyRent: p.MonthlyRent,
	}
}

// BaseAssumptions returns the defaults with the top-level overrides applied.
func (c *Configuration) BaseAssumptions() analysis.Assumptions {
	return c.Assumptions.Apply(analysis.DefaultAssumptions())
}

// AssumptionsFor returns the effective assumptions for property i.
func (c *Configuration) AssumptionsFor(i int) analysis.Assumptions {
	return c.Properties[i].Assumptions.Apply(c.BaseAssumptions())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Registered so environment overrides apply even when the file omits them.
	v.SetDefault("referenceYear", 0)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &configuration, nil
}

// Validate checks every property and its effective assumptions, returning
// all problems joined.
func (c *Configuration) Validate() error {
	var errs []error

	if c.ReferenceYear < 0 {
		errs = append(errs, fmt.Errorf("referenceYear must not be negative, got %d", c.ReferenceYear))
	}
	if err := validation.ValidateAssumptions(c.BaseAssumptions()); err != nil {
		errs = append(errs, fmt.Errorf("assumptions: %w", err))
	}
	for i, p := range c.Properties {
		label := propertyLabel(i, p)
		if err := validation.ValidateProperty(p.ToAnalysisProperty()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
		if err := validation.ValidateAssumptions(c.AssumptionsFor(i)); err != nil {
			errs = append(errs, fmt.Errorf("%s assumptions: %w", label, err))
		}
	}
	return errors.Join(errs...)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Properties) == 0 {
		warnings = append(warnings, "no properties configured")
	}

	seen := make(map[string]bool)
	for i, p := range c.Properties {
		label := propertyLabel(i, p)
		if p.Name == "" {
			warnings = append(warnings, fmt.Sprintf("%s has no name", label))
		} else if seen[p.Name] {
			warnings = append(warnings, fmt.Sprintf("property name %q is used more than once", p.Name))
		}
		seen[p.Name] = true

		if p.Price == 0 {
			warnings = append(warnings, fmt.Sprintf("%s has no price and will produce an empty analysis", label))
		}
		if p.YearBuilt == 0 && p.MonthlyRent == nil && c.Assumptions.EstimatedRent == nil && p.Assumptions.EstimatedRent == nil {
			warnings = append(warnings, fmt.Sprintf("%s has no year built; rent estimate uses the oldest age band", label))
		}
	}

	return warnings
}

func propertyLabel(i int, p Property) string {
	if p.Name != "" {
		return fmt.Sprintf("property %q", p.Name)
	}
	return fmt.Sprintf("property #%d", i+1)
}
