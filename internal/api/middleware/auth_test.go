package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifierFunc func(ctx context.Context, token string) (uuid.UUID, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	return f(ctx, token)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		verifyErr      error
		expectedStatus int
		expectedError  string
		expectedToken  string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer valid-token",
			expectedStatus: http.StatusOK,
			expectedToken:  "valid-token",
		},
		{
			name:           "missing auth header",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "No token provided",
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token",
		},
		{
			name:           "bearer without token",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token",
		},
		{
			name:           "expired token",
			authHeader:     "Bearer expired-token",
			verifyErr:      auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Token expired",
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer invalid-token",
			verifyErr:      auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token",
		},
		{
			name:           "unexpected verifier failure",
			authHeader:     "Bearer token",
			verifyErr:      errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotToken string
			verifier := verifierFunc(func(_ context.Context, token string) (uuid.UUID, error) {
				gotToken = token
				if tt.verifyErr != nil {
					return uuid.Nil, tt.verifyErr
				}
				return userID, nil
			})

			var ctxUserID uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := shared.UserIDFromContext(r.Context())
				require.True(t, ok)
				ctxUserID = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			NewAuthMiddleware(verifier).Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedError != "" {
				var body shared.ErrorResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedError, body.Error)
				return
			}
			assert.Equal(t, tt.expectedToken, gotToken)
			assert.Equal(t, userID, ctxUserID)
		})
	}
}

func TestAuthMiddlewareLogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verifyErr error
		wantLevel string
	}{
		{"rejected token is a warning", auth.ErrInvalidToken, "WARN"},
		{"expired token stays at debug", auth.ErrExpiredToken, "DEBUG"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := &logger.TestLogBuffer{}
			log := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			verifier := verifierFunc(func(context.Context, string) (uuid.UUID, error) {
				return uuid.Nil, tt.verifyErr
			})
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				t.Error("next handler must not run")
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), log))
			req.Header.Set("Authorization", "Bearer some-token")
			rr := httptest.NewRecorder()
			NewAuthMiddleware(verifier).Authenticate(next).ServeHTTP(rr, req)

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.NotEmpty(t, entries)
			last := entries[len(entries)-1]
			assert.Equal(t, "API error response", last["msg"])
			assert.Equal(t, tt.wantLevel, last["level"])
		})
	}
}
