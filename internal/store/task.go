package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
)

// TaskSortField names a column tasks can be ordered by.
type TaskSortField string

// Sortable task fields, named as they appear in the API.
const (
	SortByCreatedAt TaskSortField = "createdAt"
	SortByTitle     TaskSortField = "title"
	SortByPriority  TaskSortField = "priority"
)

// Valid reports whether f is a known sort field.
func (f TaskSortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByTitle, SortByPriority:
		return true
	}
	return false
}

// TaskFilter restricts a task listing. All set fields must match.
type TaskFilter struct {
	// UserID is the owner; required.
	UserID uuid.UUID
	// Completed filters on completion status when non-nil.
	Completed *bool
	// Priority filters on exact priority when non-nil.
	Priority *domain.Priority
	// Search matches tasks whose title contains it, ignoring case. Empty disables.
	Search string
}

// TaskListOptions controls ordering and the page window of a task listing.
type TaskListOptions struct {
	SortBy     TaskSortField
	Descending bool
	Offset     int
	Limit      int
}

// TaskStore defines the interface for task data persistence.
// Implementations do not enforce ownership on single-task operations;
// callers authorize access before mutating.
type TaskStore interface {
	// Create saves a new task. The store assigns ID, CreatedAt and UpdatedAt
	// and writes them back into task.
	// Returns ErrInvalidEntity if the task fails validation.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns one page of tasks matching filter, ordered per opts.
	List(ctx context.Context, filter TaskFilter, opts TaskListOptions) ([]*domain.Task, error)

	// Count returns the number of tasks matching filter, ignoring paging.
	Count(ctx context.Context, filter TaskFilter) (int64, error)

	// Update persists every mutable field of task (title, description,
	// completed, priority) and refreshes UpdatedAt.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
