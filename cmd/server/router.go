package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/task-api/internal/api"
	apiMiddleware "github.com/phrazzld/task-api/internal/api/middleware"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/ratelimit"
	"github.com/phrazzld/task-api/internal/service"
)

// authService is what the router needs from the authentication service.
type authService interface {
	api.AuthService
	apiMiddleware.TokenVerifier
}

// routerDeps are the services the HTTP layer is built from. Nil limiters
// disable rate limiting.
type routerDeps struct {
	auth          authService
	tasks         service.TaskService
	globalLimiter *ratelimit.Limiter
	authLimiter   *ratelimit.Limiter
	corsOrigins   []string
	// Peers allowed to set the client address through forwarding headers.
	trustedProxies []string
}

type healthResponse struct {
	Status string `json:"status"`
}

// newRouter creates the application router with all routes and middleware.
func newRouter(deps routerDeps) (http.Handler, error) {
	realIP, err := apiMiddleware.TrustedRealIP(deps.trustedProxies)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(realIP)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(apiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{shared.TraceIDHeader, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(apiMiddleware.JSONBody(apiMiddleware.MaxBodyBytes))
	if deps.globalLimiter != nil {
		r.Use(apiMiddleware.RateLimit(deps.globalLimiter))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
	})

	authHandler := api.NewAuthHandler(deps.auth)
	r.Route("/auth", func(r chi.Router) {
		if deps.authLimiter != nil {
			r.Use(apiMiddleware.RateLimit(deps.authLimiter))
		}
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	taskHandler := api.NewTaskHandler(deps.tasks)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.auth)
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.CreateTask)
		r.Get("/{id}", taskHandler.GetTask)
		r.Put("/{id}", taskHandler.UpdateTask)
		r.Patch("/{id}", taskHandler.PatchTask)
		r.Delete("/{id}", taskHandler.DeleteTask)
	})

	return r, nil
}
