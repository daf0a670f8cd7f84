package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/phrazzld/task-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func priorityPtr(p domain.Priority) *domain.Priority { return &p }
func boolPtr(b bool) *bool                          { return &b }

func mustCreateTask(
	t *testing.T,
	tasks *postgres.PostgresTaskStore,
	owner uuid.UUID,
	title string,
	priority *domain.Priority,
) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(owner, title, "", priority)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

func TestUserStoreIntegration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *gorm.DB) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)

		user, err := domain.NewUser("integration-"+uuid.NewString()+"@example.com", "$2a$04$hash")
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, user))
		assert.NotEqual(t, uuid.Nil, user.ID, "store assigns the id")
		assert.False(t, user.CreatedAt.IsZero())

		byEmail, err := users.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, "$2a$04$hash", byEmail.PasswordHash)

		byID, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)

		_, err = users.GetByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, store.ErrUserNotFound))

		_, err = users.GetByEmail(ctx, "nobody-"+uuid.NewString()+"@example.com")
		assert.True(t, errors.Is(err, store.ErrUserNotFound))
	})
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *gorm.DB) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		email := "dup-" + uuid.NewString() + "@example.com"

		first, _ := domain.NewUser(email, "$2a$04$hash")
		require.NoError(t, users.Create(ctx, first))

		// Run the conflicting insert in a savepoint so the outer transaction stays usable.
		err := tx.Transaction(func(inner *gorm.DB) error {
			second, _ := domain.NewUser(email, "$2a$04$other")
			return postgres.NewPostgresUserStore(inner, nil).Create(ctx, second)
		})
		assert.True(t, errors.Is(err, store.ErrEmailExists), "got %v", err)
	})
}

func TestTaskStoreCRUDIntegration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *gorm.DB) {
		ctx := context.Background()
		owner := testdb.MustCreateUser(t, tx)
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		task := mustCreateTask(t, tasks, owner.ID, "Write report", priorityPtr(domain.PriorityHigh))
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.False(t, task.Completed)
		assert.Equal(t, "", task.Description)

		got, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Write report", got.Title)
		require.NotNil(t, got.Priority)
		assert.Equal(t, domain.PriorityHigh, *got.Priority)
		assert.Equal(t, owner.ID, got.UserID)

		got.Completed = true
		got.Description = ""
		got.Priority = nil
		before := got.UpdatedAt
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, tasks.Update(ctx, got))
		assert.True(t, got.UpdatedAt.After(before))

		reloaded, err := tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.Completed)
		assert.Nil(t, reloaded.Priority)

		require.NoError(t, tasks.Delete(ctx, task.ID))
		_, err = tasks.GetByID(ctx, task.ID)
		assert.True(t, errors.Is(err, store.ErrTaskNotFound))

		assert.True(t, errors.Is(tasks.Delete(ctx, task.ID), store.ErrTaskNotFound))

		missing := &domain.Task{ID: uuid.New(), UserID: owner.ID, Title: "ghost"}
		assert.True(t, errors.Is(tasks.Update(ctx, missing), store.ErrTaskNotFound))
	})
}

func TestTaskStoreCreateRejectsInvalidTask(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *gorm.DB) {
		tasks := postgres.NewPostgresTaskStore(tx, nil)
		err := tasks.Create(context.Background(), &domain.Task{UserID: uuid.New()})
		assert.True(t, errors.Is(err, store.ErrInvalidEntity))
	})
}

func TestTaskStoreListIntegration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *gorm.DB) {
		ctx := context.Background()
		owner := testdb.MustCreateUser(t, tx)
		other := testdb.MustCreateUser(t, tx)
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		mustCreateTask(t, tasks, owner.ID, "buy Milk", priorityPtr(domain.PriorityLow))
		mustCreateTask(t, tasks, owner.ID, "Call mom", priorityPtr(domain.PriorityHigh))
		done := mustCreateTask(t, tasks, owner.ID, "milk the cow", nil)
		mustCreateTask(t, tasks, owner.ID, "100% done", priorityPtr(domain.PriorityMedium))
		mustCreateTask(t, tasks, other.ID, "milk for someone else", nil)

		done.Completed = true
		require.NoError(t, tasks.Update(ctx, done))

		t.Run("owner scoped", func(t *testing.T) {
			total, err := tasks.Count(ctx, store.TaskFilter{UserID: owner.ID})
			require.NoError(t, err)
			assert.EqualValues(t, 4, total)
		})

		t.Run("search is case-insensitive substring", func(t *testing.T) {
			filter := store.TaskFilter{UserID: owner.ID, Search: "MILK"}
			list, err := tasks.List(ctx, filter, store.TaskListOptions{SortBy: store.SortByTitle, Limit: 10})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "buy Milk", list[0].Title)
			assert.Equal(t, "milk the cow", list[1].Title)
		})

		t.Run("wildcards match literally", func(t *testing.T) {
			total, err := tasks.Count(ctx, store.TaskFilter{UserID: owner.ID, Search: "%"})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
		})

		t.Run("filters are conjunctive", func(t *testing.T) {
			filter := store.TaskFilter{UserID: owner.ID, Search: "milk", Completed: boolPtr(false)}
			list, err := tasks.List(ctx, filter, store.TaskListOptions{Limit: 10})
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "buy Milk", list[0].Title)

			high := priorityPtr(domain.PriorityHigh)
			total, err := tasks.Count(ctx, store.TaskFilter{UserID: owner.ID, Priority: high})
			require.NoError(t, err)
			assert.EqualValues(t, 1, total)
		})

		t.Run("priority sorts by rank with nulls last", func(t *testing.T) {
			list, err := tasks.List(ctx, store.TaskFilter{UserID: owner.ID},
				store.TaskListOptions{SortBy: store.SortByPriority, Descending: true, Limit: 10})
			require.NoError(t, err)
			require.Len(t, list, 4)
			assert.Equal(t, "Call mom", list[0].Title)
			assert.Equal(t, "100% done", list[1].Title)
			assert.Equal(t, "buy Milk", list[2].Title)
			assert.Nil(t, list[3].Priority)
		})

		t.Run("paging", func(t *testing.T) {
			opts := store.TaskListOptions{SortBy: store.SortByTitle, Offset: 2, Limit: 2}
			list, err := tasks.List(ctx, store.TaskFilter{UserID: owner.ID}, opts)
			require.NoError(t, err)
			assert.Len(t, list, 2)

			opts.Offset = 4
			list, err = tasks.List(ctx, store.TaskFilter{UserID: owner.ID}, opts)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	})
}
