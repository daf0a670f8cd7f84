package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority is the optional urgency level of a task.
type Priority string

// Known priority levels, lowest first.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known levels.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities: low=1, medium=2, high=3. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Completed   bool
	Priority    *Priority // nil when unset
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask creates an incomplete task for the given owner. The ID and
// timestamps are assigned by the store.
func NewTask(userID uuid.UUID, title, description string, priority *Priority) (*Task, error) {
	task := &Task{
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    priority,
		UserID:      userID,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrMissingOwner
	}
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if t.Priority != nil && !t.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, *t.Priority)
	}
	return nil
}

// OwnedBy reports whether userID owns the task.
func (t *Task) OwnedBy(userID uuid.UUID) bool {
	return t != nil && userID != uuid.Nil && t.UserID == userID
}

// TaskChanges carries a set of field updates. Nil fields are left untouched.
type TaskChanges struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
}

// IsEmpty reports whether no field would change.
func (c TaskChanges) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Completed == nil && c.Priority == nil
}

// ApplyTo copies every non-nil field onto t and re-validates it.
// On error t is left unmodified.
func (c TaskChanges) ApplyTo(t *Task) error {
	updated := *t

	if c.Title != nil {
		updated.Title = *c.Title
	}
	if c.Description != nil {
		updated.Description = *c.Description
	}
	if c.Completed != nil {
		updated.Completed = *c.Completed
	}
	if c.Priority != nil {
		p := *c.Priority
		updated.Priority = &p
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	*t = updated
	return nil
}
