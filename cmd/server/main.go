package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openclaip/claip/internal/api"
	"github.com/openclaip/claip/internal/checkpoint"
	"github.com/openclaip/claip/internal/config"
	"github.com/openclaip/claip/internal/domain"
	"github.com/openclaip/claip/internal/learner"
	"github.com/openclaip/claip/internal/report"
	"github.com/openclaip/claip/internal/shadow"
	"github.com/openclaip/claip/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	morals := domain.DefaultMoralRules()
	if !morals.Valid() {
		logger.Fatal("moral core misconfigured, refusing to start")
	}

	ctx := context.Background()

	l := learner.NewLearner(config.Rules(), morals, logger)
	l.SetMetricsSink(report.NewFileSink(config.ReportsDir()))
	l.SetShadowEvaluator(shadow.NewLogger(logger))

	var cm *checkpoint.Manager
	if config.CheckpointsEnabled() {
		cm = checkpoint.NewManager(config.CheckpointDir())
		l.SetCheckpointer(cm)
		logger.Info("checkpointing enabled", zap.String("dir", config.CheckpointDir()))
	}

	if dbURL := config.DatabaseURL(); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		l.SetClaimArchiver(store.NewClaimArchive(pool))
		logger.Info("claim archive enabled")
	}

	app := api.NewApp(l, cm, logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
