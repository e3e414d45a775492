package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"taskhub-backend/internal/analytics"
	"taskhub-backend/internal/config"
	"taskhub-backend/internal/db"
	"taskhub-backend/internal/logging"
	"taskhub-backend/internal/metrics"
	"taskhub-backend/internal/server"
	"taskhub-backend/internal/suggest"
	"taskhub-backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		zap.NewExample().Fatal("build logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Fatal("connect db", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		logger.Fatal("migrate db", zap.Error(err))
	}
	logger.Info("database ready", zap.String("driver", cfg.DBDriver))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	store := tasks.NewStore(database)

	svc := suggest.NewService(store, suggest.ConfigFrom(cfg.Suggest), logger.Named("suggest"),
		suggest.WithMetrics(m),
		suggest.WithCompletionSource(suggest.CompletionSourceFrom(cfg.Suggest)),
	)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, task routes are unauthenticated")
	}

	handler := server.New(server.Deps{
		DB:          database,
		Logger:      logger,
		Metrics:     m,
		Tasks:       store,
		Suggest:     svc,
		Events:      analytics.NewRecorder(database, logger.Named("analytics")),
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("api server listening", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
