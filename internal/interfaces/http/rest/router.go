// Package rest wires the HTTP surface of the caching layer.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"sitewise-backend/internal/cache"
	"sitewise-backend/internal/config"
	"sitewise-backend/internal/handlers"
	"sitewise-backend/internal/identity"
	"sitewise-backend/internal/middleware"
	"sitewise-backend/internal/observability"
	"sitewise-backend/internal/vault"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	vaults     *vault.Service
	identities *identity.Cache
	data       *cache.Cache[any]
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	vaults *vault.Service,
	identities *identity.Cache,
	data *cache.Cache[any],
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		vaults:     vaults,
		identities: identities,
		data:       data,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(rt.logger))
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.sitewise.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and observability
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.identities, rt.logger))

		sessionHandler := handlers.NewSessionHandler(rt.identities, rt.data, rt.logger)
		r.Post("/auth/logout", sessionHandler.Logout)

		r.Route("/vaults/{vaultID}", func(r chi.Router) {
			vaultHandler := handlers.NewVaultHandler(rt.vaults, rt.logger)
			r.Get("/files", vaultHandler.ListFiles)
			r.Post("/files", vaultHandler.CreateFile)
			r.Get("/files/{fileID}", vaultHandler.GetFile)
			r.Put("/files/{fileID}", vaultHandler.UpdateFile)
			r.Delete("/files/{fileID}", vaultHandler.DeleteFile)
			r.Post("/files/{fileID}/move", vaultHandler.MoveFile)
			r.Post("/files/bulk-delete", vaultHandler.BulkDeleteFiles)
			r.Get("/folders", vaultHandler.ListFolders)
			r.Post("/folders", vaultHandler.CreateFolder)
			r.Put("/folders/{folderID}", vaultHandler.RenameFolder)
			r.Delete("/folders/{folderID}", vaultHandler.DeleteFolder)
			r.Get("/stats", vaultHandler.VaultStats)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/identity/invalidate", sessionHandler.InvalidateSubject)
			r.Post("/identity/invalidate-tenant", sessionHandler.InvalidateTenant)
			r.Get("/cache/stats", sessionHandler.CacheStats)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
