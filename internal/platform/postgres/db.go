package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/redact"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Options tunes the connection pool and query logging.
type Options struct {
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	SlowQueryThreshold time.Duration
	PingTimeout        time.Duration
}

// DB bundles the GORM handle with the underlying pool so callers can run
// migrations and close the pool.
type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// Open connects to PostgreSQL through the pgx stdlib driver, verifies the
// connection and wraps it in GORM with a slog-backed logger.
func Open(ctx context.Context, dsn string, opts Options, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.Default()
	}

	pgxCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %s", redact.Error(err))
	}

	sqlDB := stdlib.OpenDB(*pgxCfg)
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:  logger.NewGormLogger(log, opts.SlowQueryThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	log.Info("database connection established",
		slog.String("host", pgxCfg.Host),
		slog.String("database", pgxCfg.Database),
		slog.Int("max_open_conns", opts.MaxOpenConns))

	return &DB{Gorm: gormDB, SQL: sqlDB}, nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Close()
}
