package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"taskhub-backend/internal/config"
	"taskhub-backend/internal/db"
	"taskhub-backend/internal/logging"
	"taskhub-backend/internal/suggest"
	"taskhub-backend/internal/tasks"
)

func main() {
	if err := newRootCmd(openService).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService connects to the configured database and builds the engine.
func openService(ctx context.Context) (*suggest.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, nil, err
	}

	database, err := db.Connect(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(ctx, database, cfg.DBDriver); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("migrate db: %w", err)
	}

	svc := suggest.NewService(tasks.NewStore(database), suggest.ConfigFrom(cfg.Suggest), logger,
		suggest.WithCompletionSource(suggest.CompletionSourceFrom(cfg.Suggest)),
	)
	closeFn := func() {
		database.Close()
		_ = logger.Sync()
	}
	logger.Debug("suggestion engine ready", zap.String("driver", cfg.DBDriver))
	return svc, closeFn, nil
}
