package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
)

func init() {
	shared.RegisterStructValidation(patchTaskStructLevel, PatchTaskRequest{})
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// LoginResponse carries the access token.
type LoginResponse struct {
	Token string `json:"token"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       *string `json:"title"       validate:"required,min=1"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"required,min=1"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// PatchTaskRequest is the body of PATCH /tasks/{id}. At least one field
// must be present.
type PatchTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

func patchTaskStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(PatchTaskRequest)
	if req.Title == nil && req.Description == nil && req.Completed == nil && req.Priority == nil {
		sl.ReportError(req.Title, "", "", shared.TagAtLeastOne, "")
	}
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    *string   `json:"priority"`
	UserID      uuid.UUID `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PaginationMeta describes the page returned by GET /tasks.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// TaskListResponse is the body of GET /tasks.
type TaskListResponse struct {
	Data []TaskResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.Priority != nil {
		p := task.Priority.String()
		resp.Priority = &p
	}
	return resp
}

func taskPageToResponse(page *service.TaskPage) TaskListResponse {
	data := make([]TaskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		data = append(data, taskToResponse(task))
	}
	return TaskListResponse{
		Data: data,
		Meta: PaginationMeta{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}

// changes converts optional request fields into domain changes. priority
// must already have passed validation.
func changes(title, description *string, completed *bool, priority *string) domain.TaskChanges {
	c := domain.TaskChanges{
		Title:       title,
		Description: description,
		Completed:   completed,
	}
	if priority != nil {
		p := domain.Priority(*priority)
		c.Priority = &p
	}
	return c
}
