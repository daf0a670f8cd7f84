package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/service/auth"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "validation error",
			err:            domain.NewValidationError("title", "title is required"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid id",
			err:            fmt.Errorf("%w: bad", domain.ErrInvalidID),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			err:            fmt.Errorf("%w: unexpected EOF", shared.ErrInvalidJSON),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid entity",
			err:            store.ErrInvalidEntity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "authentication error",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrapped credentials error",
			err:            fmt.Errorf("login: %w", auth.ErrInvalidCredentials),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "task not found",
			err:            service.ErrTaskNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "store not found",
			err:            store.ErrTaskNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "conflict error",
			err:            store.ErrEmailExists,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "wrapped store duplicate",
			err:            store.NewStoreError("task", "create", "unique violation", store.ErrDuplicate),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "wrapped store not found",
			err:            store.NewStoreError("user", "get", "no rows", store.ErrNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "unknown error",
			err:            errors.New("unknown error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "Internal server error"},
		{"validation message passes through", domain.NewValidationError("limit", "limit must be at most 100"), "limit must be at most 100"},
		{"invalid id", domain.ErrInvalidID, "Invalid ID"},
		{"invalid json", shared.ErrInvalidJSON, "Invalid JSON"},
		{"credentials", auth.ErrInvalidCredentials, "Invalid credentials"},
		{"expired", auth.ErrExpiredToken, "Token expired"},
		{"missing token", auth.ErrMissingToken, "No token provided"},
		{"invalid token", auth.ErrInvalidToken, "Invalid token"},
		{"task not found", service.ErrTaskNotFound, "Task not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"other duplicate", store.ErrDuplicate, "Already exists"},
		{"invalid priority", fmt.Errorf("%w: %q", domain.ErrInvalidPriority, "urgent"), "priority must be one of: low, medium, high"},
		{
			name:     "internal details are hidden",
			err:      errors.New(`pq: relation "tasks" does not exist at postgres://admin:secret@db:5432`),
			expected: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	t.Run("mapped message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/tasks/1", nil)

		HandleAPIError(w, r, service.ErrTaskNotFound, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Task not found"}`, w.Body.String())
	})

	t.Run("override message", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(w, r, errors.New("boom"), "Something else")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Something else"}`, w.Body.String())
	})

	t.Run("internal error does not leak", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(w, r, errors.New("password=hunter2 in connection string"), "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, strings.Contains(w.Body.String(), "hunter2"))
	})
}
