package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/internal/config"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"github.com/iwvelando/deal-finder/pkg/output"
	"github.com/iwvelando/deal-finder/pkg/validation"
	"go.uber.org/zap"
)

// analyzeConfiguration runs every configured property through the engine.
func analyzeConfiguration(logger *zap.Logger, conf *config.Configuration, referenceYear int) []output.Result {
	engine := analysis.NewEngine(logger, analysis.WithReferenceYear(referenceYear))

	results := make([]output.Result, 0, len(conf.Properties))
	for i, p := range conf.Properties {
		property := p.ToAnalysisProperty()
		results = append(results, output.Result{
			Name:     p.Name,
			Property: property,
			Analysis: engine.Analyze(property, conf.AssumptionsFor(i)),
		})
	}
	return results
}

func run(w io.Writer, logger *zap.Logger, conf *config.Configuration, outputFormat string, referenceYear int) error {
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if referenceYear <= 0 {
		referenceYear = conf.ReferenceYear
	}
	results := analyzeConfiguration(logger, conf, referenceYear)

	logger.Debug("properties analyzed",
		zap.String("op", "main"),
		zap.Int("count", len(results)),
	)
	return output.Write(w, outputFormat, results)
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, yaml")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	referenceYear := flag.Int("reference-year", 0, "year building age is measured against (default: config value, then current year)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if err := run(os.Stdout, logger, conf, outputFormat, *referenceYear); err != nil {
		logger.Fatal("failed to analyze properties",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
