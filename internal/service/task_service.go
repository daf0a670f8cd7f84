package service

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// TaskQuery selects one page of a user's tasks.
type TaskQuery struct {
	Page       int
	Limit      int
	Completed  *bool
	Priority   *domain.Priority
	Search     string
	SortBy     store.TaskSortField
	Descending bool
}

// TaskPage is one page of tasks plus pagination metadata.
type TaskPage struct {
	Tasks      []*domain.Task
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// TaskInput holds the fields supplied when creating a task.
type TaskInput struct {
	Title       string
	Description string
	Priority    *domain.Priority
}

// TaskService provides task operations scoped to the calling user.
type TaskService interface {
	// List returns the caller's tasks matching query.
	List(ctx context.Context, userID uuid.UUID, query TaskQuery) (*TaskPage, error)

	// Get returns a single task.
	// Returns ErrTaskNotFound if it does not exist or is not owned by userID.
	Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// Create stores a new incomplete task owned by userID.
	Create(ctx context.Context, userID uuid.UUID, input TaskInput) (*domain.Task, error)

	// Replace performs a full update. Title must be set; other fields that
	// are nil keep their current values.
	Replace(ctx context.Context, userID, taskID uuid.UUID, changes domain.TaskChanges) (*domain.Task, error)

	// Patch changes only the supplied fields.
	Patch(ctx context.Context, userID, taskID uuid.UUID, changes domain.TaskChanges) (*domain.Task, error)

	// Delete removes a task.
	// Returns ErrTaskNotFound if it does not exist or is not owned by userID.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// If logger is nil, a default logger will be used.
func NewTaskService(tasks store.TaskStore, logger *slog.Logger) TaskService {
	if tasks == nil {
		panic("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &taskServiceImpl{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_service")),
	}
}

// List implements TaskService.List
func (s *taskServiceImpl) List(ctx context.Context, userID uuid.UUID, query TaskQuery) (*TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 10
	}
	if !query.SortBy.Valid() {
		query.SortBy = store.SortByCreatedAt
	}

	filter := store.TaskFilter{
		UserID:    userID,
		Completed: query.Completed,
		Priority:  query.Priority,
		Search:    query.Search,
	}

	// A page whose offset does not fit in an int is past any real result set.
	tasks := []*domain.Task{}
	if query.Page-1 <= math.MaxInt/query.Limit {
		opts := store.TaskListOptions{
			SortBy:     query.SortBy,
			Descending: query.Descending,
			Offset:     (query.Page - 1) * query.Limit,
			Limit:      query.Limit,
		}
		var err error
		if tasks, err = s.tasks.List(ctx, filter, opts); err != nil {
			return nil, NewServiceError("list", "failed to list tasks", err)
		}
	}
	total, err := s.tasks.Count(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list", "failed to count tasks", err)
	}

	log.Debug("listed tasks",
		slog.String("user_id", userID.String()),
		slog.Int("page", query.Page),
		slog.Int("returned", len(tasks)),
		slog.Int64("total", total))

	return &TaskPage{
		Tasks:      tasks,
		Page:       query.Page,
		Limit:      query.Limit,
		Total:      total,
		TotalPages: TotalPages(total, query.Limit),
	}, nil
}

// Get implements TaskService.Get
func (s *taskServiceImpl) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	return s.authorizeTask(ctx, "get", userID, taskID)
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(ctx context.Context, userID uuid.UUID, input TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, input.Title, input.Description, input.Priority)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewServiceError("create", "failed to save task", err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// Replace implements TaskService.Replace
func (s *taskServiceImpl) Replace(
	ctx context.Context,
	userID, taskID uuid.UUID,
	changes domain.TaskChanges,
) (*domain.Task, error) {
	if changes.Title == nil {
		return nil, domain.NewValidationError("title", "title is required")
	}
	return s.update(ctx, "replace", userID, taskID, changes)
}

// Patch implements TaskService.Patch
func (s *taskServiceImpl) Patch(
	ctx context.Context,
	userID, taskID uuid.UUID,
	changes domain.TaskChanges,
) (*domain.Task, error) {
	if changes.IsEmpty() {
		return nil, domain.NewValidationError("", "at least one field must be provided")
	}
	return s.update(ctx, "patch", userID, taskID, changes)
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.authorizeTask(ctx, "delete", userID, taskID); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return NewServiceError("delete", "failed to delete task", err)
	}

	log.Debug("task deleted", slog.String("task_id", taskID.String()))
	return nil
}

func (s *taskServiceImpl) update(
	ctx context.Context,
	operation string,
	userID, taskID uuid.UUID,
	changes domain.TaskChanges,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.authorizeTask(ctx, operation, userID, taskID)
	if err != nil {
		return nil, err
	}

	if err := changes.ApplyTo(task); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewServiceError(operation, "failed to update task", err)
	}

	log.Debug("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("operation", operation))
	return task, nil
}

// authorizeTask loads a task and checks that userID owns it. Missing and
// foreign tasks both yield ErrTaskNotFound.
func (s *taskServiceImpl) authorizeTask(
	ctx context.Context,
	operation string,
	userID, taskID uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewServiceError(operation, "failed to load task", err)
	}

	if !task.OwnedBy(userID) {
		log.Debug("task access denied",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()),
			slog.String("operation", operation))
		return nil, ErrTaskNotFound
	}

	return task, nil
}

// TotalPages returns ceil(total/limit), or 0 when there are no results.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
