package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"sitewise-backend/internal/cache"
	"sitewise-backend/internal/identity"
	"sitewise-backend/internal/middleware"
	"sitewise-backend/pkg/api"
)

// SessionHandler owns the push-based identity invalidation endpoints. The
// identity cache cannot observe logout or profile edits itself; these
// endpoints are the hooks the rest of the system calls when they happen.
type SessionHandler struct {
	identities *identity.Cache
	data       *cache.Cache[any]
	logger     *zap.Logger
}

// NewSessionHandler creates the session/invalidation handler.
func NewSessionHandler(identities *identity.Cache, data *cache.Cache[any], logger *zap.Logger) *SessionHandler {
	return &SessionHandler{identities: identities, data: data, logger: logger}
}

// Logout handles POST /auth/logout: the caller's cached identity must not
// outlive the session.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	h.identities.Invalidate(ident.SubjectID)
	api.Success(w, http.StatusNoContent, nil)
}

// InvalidateSubject handles POST /admin/identity/invalidate. Profile-edit
// flows call this after the write commits.
func (h *SessionHandler) InvalidateSubject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string `json:"subject_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SubjectID == "" {
		api.Error(w, http.StatusBadRequest, "subject_id is required")
		return
	}

	existed := h.identities.Invalidate(body.SubjectID)
	api.Success(w, http.StatusOK, map[string]bool{"invalidated": existed})
}

// InvalidateTenant handles POST /admin/identity/invalidate-tenant. Tenant-wide
// changes (role scheme edits, tenant suspension) call this.
func (h *SessionHandler) InvalidateTenant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID string `json:"tenant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TenantID == "" {
		api.Error(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	removed := h.identities.InvalidateTenant(body.TenantID)
	h.logger.Info("Tenant identities invalidated",
		zap.String("tenant_id", body.TenantID),
		zap.Int("count", removed),
	)
	api.Success(w, http.StatusOK, map[string]int{"invalidated": removed})
}

// CacheStats handles GET /admin/cache/stats.
func (h *SessionHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]cache.Stats{
		"data":     h.data.Stats(),
		"identity": h.identities.Stats(),
	})
}
