package mocks

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
)

// MockTaskStore implements store.TaskStore in memory for testing. It mirrors
// the filtering, ordering and paging rules of the Postgres store.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListFn    func(ctx context.Context, filter store.TaskFilter, opts store.TaskListOptions) ([]*domain.Task, error)
	CountFn   func(ctx context.Context, filter store.TaskFilter) (int64, error)
	UpdateFn  func(ctx context.Context, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Now supplies timestamps. Defaults to a clock that advances one
	// millisecond per call so creation order is always observable.
	Now func() time.Time

	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
	clock time.Time
}

// Ensure MockTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty in-memory task store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *MockTaskStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	task.ID = uuid.New()
	task.CreatedAt = now
	task.UpdatedAt = now
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	opts store.TaskListOptions,
) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, opts)
	}

	m.mu.Lock()
	matched := m.match(filter)
	m.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], opts)
	})

	if opts.Offset >= len(matched) {
		return []*domain.Task{}, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// Count implements the TaskStore interface
func (m *MockTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(filter))), nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	task.CreatedAt = existing.CreatedAt
	task.UserID = existing.UserID
	task.UpdatedAt = m.now()
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// Len returns the number of stored tasks across all owners.
func (m *MockTaskStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// match must be called with m.mu held.
func (m *MockTaskStore) match(filter store.TaskFilter) []*domain.Task {
	search := strings.ToLower(filter.Search)
	matched := make([]*domain.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if task.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.Priority != nil && (task.Priority == nil || *task.Priority != *filter.Priority) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(task.Title), search) {
			continue
		}
		matched = append(matched, cloneTask(task))
	}
	return matched
}

func less(a, b *domain.Task, opts store.TaskListOptions) bool {
	var cmp int
	switch opts.SortBy {
	case store.SortByTitle:
		cmp = strings.Compare(a.Title, b.Title)
	case store.SortByPriority:
		// Unset priorities sort last in either direction.
		switch {
		case a.Priority == nil && b.Priority == nil:
			cmp = 0
		case a.Priority == nil:
			return false
		case b.Priority == nil:
			return true
		default:
			cmp = a.Priority.Rank() - b.Priority.Rank()
		}
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if cmp == 0 {
		cmp = bytes.Compare(a.ID[:], b.ID[:])
	}
	if opts.Descending {
		return cmp > 0
	}
	return cmp < 0
}

func cloneTask(task *domain.Task) *domain.Task {
	clone := *task
	if task.Priority != nil {
		p := *task.Priority
		clone.Priority = &p
	}
	return &clone
}
