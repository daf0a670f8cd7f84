package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name    string
		value   string
		want    uuid.UUID
		wantErr bool
	}{
		{name: "valid", value: id.String(), want: id},
		{name: "missing", value: "", wantErr: true},
		{name: "malformed", value: "not-a-uuid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withURLParam(httptest.NewRequest(http.MethodGet, "/tasks/x", nil), "id", tt.value)
			got, err := getPathUUID(r, "id")
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidID))
				assert.Equal(t, uuid.Nil, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleUserIDAndPathUUID(t *testing.T) {
	t.Parallel()

	t.Run("missing user", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", uuid.NewString())

		_, _, ok := handleUserIDAndPathUUID(w, r, "id")

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "abc")
		r = r.WithContext(shared.WithUserID(r.Context(), uuid.New()))

		_, _, ok := handleUserIDAndPathUUID(w, r, "id")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Invalid ID"}`, w.Body.String())
	})

	t.Run("success", func(t *testing.T) {
		userID, taskID := uuid.New(), uuid.New()
		w := httptest.NewRecorder()
		r := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", taskID.String())
		r = r.WithContext(shared.WithUserID(r.Context(), userID))

		gotUser, gotTask, ok := handleUserIDAndPathUUID(w, r, "id")

		require.True(t, ok)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, taskID, gotTask)
	})
}

func TestDecodeAndValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantError  string
	}{
		{name: "valid", body: `{"email":"a@b.c","password":"pw"}`, wantOK: true},
		{name: "malformed", body: `{"email":`, wantStatus: http.StatusBadRequest, wantError: "Invalid JSON"},
		{name: "missing field", body: `{"email":"a@b.c"}`, wantStatus: http.StatusBadRequest, wantError: "password is required"},
		{name: "wrong type", body: `{"email":5,"password":"pw"}`, wantStatus: http.StatusBadRequest, wantError: "email has an invalid type"},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest, wantError: "email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))

			var req LoginRequest
			ok := decodeAndValidate(w, r, &req)

			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, tt.wantStatus, w.Code)
				assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, w.Body.String())
			}
		})
	}

	t.Run("body too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := `{"email":"` + strings.Repeat("a", 64) + `","password":"pw"}`
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		var req LoginRequest
		assert.False(t, decodeAndValidate(w, r, &req))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.JSONEq(t, `{"error":"Request entity too large"}`, w.Body.String())
	})
}
