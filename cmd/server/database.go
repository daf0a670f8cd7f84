package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/redact"
)

// setupAppDatabase establishes a connection to the database and configures
// the connection pool from cfg.
func setupAppDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*postgres.DB, error) {
	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.Options{
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %s", redact.Error(err))
	}
	return db, nil
}

func closeDatabase(db *postgres.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("error closing database connection", slog.String("error", redact.Error(err)))
	}
}
