package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/phrazzld/task-api/internal/api/shared"
)

// MaxBodyBytes is the largest request body JSONBody accepts.
const MaxBodyBytes = 1 << 20

// JSONBody rejects oversized and syntactically invalid JSON bodies on
// POST, PUT and PATCH before they reach a handler. The body is buffered and
// handed on unchanged.
func JSONBody(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = MaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge,
						"Request entity too large", err)
					return
				}
				shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid JSON", err)
				return
			}

			if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid JSON")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next.ServeHTTP(w, r)
		})
	}
}
