package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thirdwave/contentapi/internal/config"
	"github.com/thirdwave/contentapi/internal/database"
	"github.com/thirdwave/contentapi/internal/metrics"
)

// APIVersion is the major API version appended to the mounting point.
const APIVersion = "1"

// AuthHandler is the interface of the token endpoint handler, keeping the
// router decoupled from the concrete auth implementation.
type AuthHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
}

// Dependencies holds the injectable dependencies of the route tree.
type Dependencies struct {
	DB             *database.DB
	APIConfig      *config.APIConfig
	ContentRoutes  func(chi.Router)
	AuthHandler    AuthHandler
	AuthMiddleware func(http.Handler) http.Handler
	ThumbHandler   http.HandlerFunc
	FilesDir       string
}

// NewRouter builds the chi router with the full route tree and middleware
// stack. The content API is mounted under the configured mounting point
// with the major version appended.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(corsMiddleware())

	r.Get("/health", healthHandler(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Stored files and their thumbnails.
	if deps.FilesDir != "" {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(deps.FilesDir)))
		r.Get("/files/*", fileServer.ServeHTTP)
	}
	if deps.ThumbHandler != nil {
		r.Get("/thumbs/{dims}/*", deps.ThumbHandler)
	}

	mount := strings.TrimSuffix(deps.APIConfig.MountingPoint, "/") + "/v" + APIVersion
	r.Route(mount, func(r chi.Router) {
		r.Use(Whitelist(deps.APIConfig.Whitelist))
		if deps.AuthMiddleware != nil {
			r.Use(deps.AuthMiddleware)
		}

		if deps.AuthHandler != nil {
			r.Post("/auth/token", deps.AuthHandler.Token)
		}

		deps.ContentRoutes(r)
	})

	return r
}

// corsMiddleware allows cross-origin reads from anywhere, matching the
// wildcard origin set on every response body.
func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})
}

// healthHandler reports the health of the application, including a
// database connectivity check.
func healthHandler(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.Health(r.Context()); err != nil {
				ErrorMessage(w, http.StatusServiceUnavailable, "Database health check failed.")
				return
			}
		}
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
