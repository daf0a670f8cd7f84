package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/redact"
	"github.com/phrazzld/task-api/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// priorityRankSQL orders the priority column low < medium < high.
const priorityRankSQL = "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 END"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db *gorm.DB, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	record := newTaskRecord(task)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, task.UserID)
		}
		log.Error("failed to create task",
			slog.String("user_id", task.UserID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	*task = *record.toDomain()

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var record taskRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("task_id", id.String()),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	return record.toDomain(), nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	opts store.TaskListOptions,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var records []taskRecord
	err := s.listQuery(ctx, filter, opts).Find(&records).Error
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("user_id", filter.UserID.String()),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}

	tasks := make([]*domain.Task, 0, len(records))
	for i := range records {
		tasks = append(tasks, records[i].toDomain())
	}

	log.Debug("listed tasks",
		slog.String("user_id", filter.UserID.String()),
		slog.Int("count", len(tasks)),
		slog.Int("offset", opts.Offset),
		slog.Int("limit", opts.Limit))
	return tasks, nil
}

// Count implements store.TaskStore.Count
func (s *PostgresTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	if err := s.filtered(ctx, filter).Count(&total).Error; err != nil {
		log.Error("failed to count tasks",
			slog.String("user_id", filter.UserID.String()),
			slog.String("error", redact.Error(err)))
		return 0, store.NewStoreError("task", "count", "query failed", MapError(err))
	}
	return total, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	now := time.Now().UTC()
	// A map is used so zero values (completed=false, description="") are written.
	result := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
			"priority":    priorityColumn(task.Priority),
			"updated_at":  now,
		})
	if err := checkRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
			return err
		}
		log.Error("failed to update task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "update", "update failed", err)
	}

	task.UpdatedAt = now

	log.Info("task updated successfully", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRecord{})
	if err := checkRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for delete", slog.String("task_id", id.String()))
			return err
		}
		log.Error("failed to delete task",
			slog.String("task_id", id.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "delete", "delete failed", err)
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// filtered builds the WHERE clause shared by List and Count.
func (s *PostgresTaskStore) filtered(ctx context.Context, filter store.TaskFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&taskRecord{}).Where("user_id = ?", filter.UserID)

	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", string(*filter.Priority))
	}
	if filter.Search != "" {
		q = q.Where("title ILIKE ?", "%"+escapeLike(filter.Search)+"%")
	}
	return q
}

func (s *PostgresTaskStore) listQuery(
	ctx context.Context,
	filter store.TaskFilter,
	opts store.TaskListOptions,
) *gorm.DB {
	q := s.filtered(ctx, filter).Clauses(orderBy(opts))
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return q
}

// orderBy builds the ORDER BY clause. id is appended as a tiebreaker so that
// pages never overlap when sort keys repeat.
func orderBy(opts store.TaskListOptions) clause.OrderBy {
	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}

	var sortSQL string
	switch opts.SortBy {
	case store.SortByTitle:
		sortSQL = "title " + direction
	case store.SortByPriority:
		sortSQL = priorityRankSQL + " " + direction + " NULLS LAST"
	default:
		sortSQL = "created_at " + direction
	}

	return clause.OrderBy{
		Expression: clause.Expr{SQL: sortSQL + ", id " + direction},
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
