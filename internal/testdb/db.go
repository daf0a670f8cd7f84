package testdb

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 10 * time.Second

var migrateOnce sync.Once
var migrateErr error

// GetTestDatabaseURL returns the database URL for tests, checking
// TASKS_TEST_DATABASE_URL and then DATABASE_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("TASKS_TEST_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// GetTestDBWithT opens the test database, applies migrations once per test
// binary and registers cleanup. The test is skipped when no database is configured.
func GetTestDBWithT(t *testing.T) *gorm.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("TASKS_TEST_DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	quiet := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	db, err := postgres.Open(ctx, GetTestDatabaseURL(), postgres.Options{MaxOpenConns: 5, MaxIdleConns: 2}, quiet)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db.SQL, "up", quiet)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db.Gorm
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *gorm.DB, fn func(t *testing.T, tx *gorm.DB)) {
	t.Helper()

	tx := db.Begin()
	require.NoError(t, tx.Error, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback().Error; err != nil {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// MustCreateUser inserts a user with a unique email and returns it.
func MustCreateUser(t *testing.T, tx *gorm.DB) *domain.User {
	t.Helper()

	user, err := domain.NewUser("user-"+uuid.NewString()+"@example.com", "$2a$04$testhash")
	require.NoError(t, err)

	store := postgres.NewPostgresUserStore(tx, nil)
	require.NoError(t, store.Create(context.Background(), user))
	return user
}
