package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pmonti/air-quality-etl/internal/adapter/csvfile"
	httpadapter "github.com/pmonti/air-quality-etl/internal/adapter/http"
	kafkaadapter "github.com/pmonti/air-quality-etl/internal/adapter/kafka"
	"github.com/pmonti/air-quality-etl/internal/adapter/postgres"
	"github.com/pmonti/air-quality-etl/internal/config"
	"github.com/pmonti/air-quality-etl/internal/observability"
	"github.com/pmonti/air-quality-etl/internal/pipeline"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := csvfile.NewReader(cfg.DataPath, logger)

	// Sinks are feature-flagged; with none enabled the service only serves
	// the analysis API.
	var sinks []pipeline.Sink
	var closers []interface{ Close() error }

	if cfg.KafkaEnabled {
		kw := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, kw)
		closers = append(closers, kw)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}
	if cfg.PostgresEnabled {
		pw, err := postgres.NewWriter(cfg.PostgresDSN, logger)
		if err != nil {
			logger.Error("postgres sink init failed", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, pw)
		closers = append(closers, pw)
		logger.Info("postgres sink enabled")
	}

	svc := pipeline.New(reader, sinks, logger, metrics, cfg.CacheSize)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// A failed load leaves the service up and not-ready; the API answers
	// "no data" instead of crashing.
	go func() {
		if err := svc.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
