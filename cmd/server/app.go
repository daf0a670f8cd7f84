package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/ratelimit"
	"github.com/phrazzld/task-api/internal/redact"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/service/auth"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *postgres.DB

	userStore store.UserStore
	taskStore store.TaskStore

	authService *auth.Service
	taskService service.TaskService

	// Nil when rate limiting is disabled.
	globalLimiter *ratelimit.Limiter
	authLimiter   *ratelimit.Limiter
	redis         *redis.Client
}

// newApplication creates a new application instance with all dependencies
// initialized. The database connection must already be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *postgres.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewPostgresUserStore(db.Gorm, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db.Gorm, logger)

	app.authService = auth.NewService(app.userStore, jwtService, hasher, logger)
	app.taskService = service.NewTaskService(app.taskStore, logger)

	if err := app.setupRateLimiters(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupRateLimiters builds the global and auth limiters over a shared
// counter. Counters live in Redis when a URL is configured.
func (app *application) setupRateLimiters(ctx context.Context) error {
	cfg := app.config.RateLimit
	if !cfg.Enabled {
		app.logger.Info("rate limiting disabled")
		return nil
	}

	var counter ratelimit.Counter
	if cfg.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %s", redact.Error(err))
		}
		app.redis = client
		counter = ratelimit.NewRedisCounter(client, ratelimit.DefaultRedisPrefix)
		app.logger.Info("rate limit counters stored in redis")
	} else {
		counter = ratelimit.NewMemoryCounter()
		app.logger.Info("rate limit counters stored in memory")
	}

	var err error
	app.globalLimiter, err = ratelimit.New("global", counter, cfg.GlobalMax, cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to create global rate limiter: %w", err)
	}
	app.authLimiter, err = ratelimit.New("auth", counter, cfg.AuthMax, cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to create auth rate limiter: %w", err)
	}

	app.logger.Info("rate limiters configured",
		slog.Duration("window", cfg.Window),
		slog.Int("global_max", cfg.GlobalMax),
		slog.Int("auth_max", cfg.AuthMax))
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	router, err := newRouter(routerDeps{
		auth:           app.authService,
		tasks:          app.taskService,
		globalLimiter:  app.globalLimiter,
		authLimiter:    app.authLimiter,
		corsOrigins:    app.config.Server.CORSAllowedOrigins,
		trustedProxies: app.config.Server.TrustedProxies,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
		app.redis = nil
	}

	if app.db != nil {
		closeDatabase(app.db, app.logger)
		app.db = nil
	}
}
