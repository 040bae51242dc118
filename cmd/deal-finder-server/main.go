package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/handlers"
	"github.com/iwvelando/deal-finder/internal/analysis"
	"github.com/iwvelando/deal-finder/internal/config"
	"github.com/iwvelando/deal-finder/internal/server"
	"github.com/iwvelando/deal-finder/internal/store"
	"github.com/iwvelando/deal-finder/pkg/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open property store",
			zap.String("op", "main"),
			zap.String("driver", cfg.Database.Driver),
			zap.Error(err),
		)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close property store",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	engine := analysis.NewEngine(logger, analysis.WithReferenceYear(cfg.ReferenceYear))
	assumptions := cfg.DefaultAssumptions()

	api := server.NewHandler(logger, st, engine, server.Options{
		MaxBodySize:    cfg.BodySizeBytes(),
		Version:        version,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Assumptions:    &assumptions,
		Metrics:        server.NewMetrics(),
	})

	accessLog, err := zap.NewStdLogAt(logger.With(zap.String("op", "http.access")), zapcore.InfoLevel)
	if err != nil {
		logger.Fatal("failed to create access logger",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	srv := &http.Server{
		Addr:     cfg.Address,
		Handler:  handlers.CombinedLoggingHandler(accessLog.Writer(), api),
		ErrorLog: zap.NewStdLog(logger.With(zap.String("op", "http.server"))),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting deal finder server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.Int64("maxBodySize", cfg.BodySizeBytes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
			return
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down deal finder server",
		zap.String("op", "main"),
		zap.Duration("timeout", cfg.ShutdownTimeout),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
