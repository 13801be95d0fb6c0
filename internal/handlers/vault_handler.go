// Package handlers implements the HTTP handlers exercising the caching layer.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sitewise-backend/internal/middleware"
	"sitewise-backend/internal/vault"
	"sitewise-backend/pkg/api"
)

// VaultHandler serves vault reads from the cached service and routes every
// mutation through the write-then-invalidate path.
type VaultHandler struct {
	service *vault.Service
	logger  *zap.Logger
}

// NewVaultHandler creates the vault HTTP handler.
func NewVaultHandler(service *vault.Service, logger *zap.Logger) *VaultHandler {
	return &VaultHandler{service: service, logger: logger}
}

// ListFiles handles GET /vaults/{vaultID}/files
func (h *VaultHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	vaultID := chi.URLParam(r, "vaultID")
	opts := listOptions(r)

	files, err := h.service.ListFiles(r.Context(), vaultID, r.URL.Query().Get("folder_id"), opts)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, files)
}

// ListFolders handles GET /vaults/{vaultID}/folders
func (h *VaultHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	vaultID := chi.URLParam(r, "vaultID")

	folders, err := h.service.ListFolders(r.Context(), vaultID, r.URL.Query().Get("parent_id"))
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, folders)
}

// VaultStats handles GET /vaults/{vaultID}/stats
func (h *VaultHandler) VaultStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.VaultStats(r.Context(), chi.URLParam(r, "vaultID"))
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}

// GetFile handles GET /vaults/{vaultID}/files/{fileID}
func (h *VaultHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.GetFile(r.Context(), chi.URLParam(r, "vaultID"), chi.URLParam(r, "fileID"))
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, file)
}

// CreateFile handles POST /vaults/{vaultID}/files
func (h *VaultHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var file vault.File
	if err := json.NewDecoder(r.Body).Decode(&file); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	file.VaultID = chi.URLParam(r, "vaultID")

	created, err := h.service.CreateFile(r.Context(), tenantID(r), file)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, created)
}

// UpdateFile handles PUT /vaults/{vaultID}/files/{fileID}
func (h *VaultHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	var file vault.File
	if err := json.NewDecoder(r.Body).Decode(&file); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	file.VaultID = chi.URLParam(r, "vaultID")
	file.ID = chi.URLParam(r, "fileID")

	updated, err := h.service.UpdateFile(r.Context(), tenantID(r), file)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, updated)
}

// DeleteFile handles DELETE /vaults/{vaultID}/files/{fileID}
func (h *VaultHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteFile(r.Context(), tenantID(r), chi.URLParam(r, "vaultID"), chi.URLParam(r, "fileID"))
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusNoContent, nil)
}

// MoveFile handles POST /vaults/{vaultID}/files/{fileID}/move
func (h *VaultHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToFolderID string `json:"to_folder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	moved, err := h.service.MoveFile(r.Context(), tenantID(r),
		chi.URLParam(r, "vaultID"), chi.URLParam(r, "fileID"), body.ToFolderID)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, moved)
}

// BulkDeleteFiles handles POST /vaults/{vaultID}/files/bulk-delete
func (h *VaultHandler) BulkDeleteFiles(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FileIDs []string `json:"file_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.service.DeleteFiles(r.Context(), tenantID(r), chi.URLParam(r, "vaultID"), body.FileIDs)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusNoContent, nil)
}

// CreateFolder handles POST /vaults/{vaultID}/folders
func (h *VaultHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var folder vault.Folder
	if err := json.NewDecoder(r.Body).Decode(&folder); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	folder.VaultID = chi.URLParam(r, "vaultID")

	created, err := h.service.CreateFolder(r.Context(), tenantID(r), folder)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, created)
}

// RenameFolder handles PUT /vaults/{vaultID}/folders/{folderID}
func (h *VaultHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	renamed, err := h.service.RenameFolder(r.Context(), tenantID(r),
		chi.URLParam(r, "vaultID"), chi.URLParam(r, "folderID"), body.Name)
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusOK, renamed)
}

// DeleteFolder handles DELETE /vaults/{vaultID}/folders/{folderID}
func (h *VaultHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteFolder(r.Context(), tenantID(r),
		chi.URLParam(r, "vaultID"), chi.URLParam(r, "folderID"))
	if err != nil {
		api.FromError(w, err)
		return
	}

	api.Success(w, http.StatusNoContent, nil)
}

// tenantID returns the tenant of the authenticated caller.
func tenantID(r *http.Request) string {
	if ident, ok := middleware.IdentityFromContext(r.Context()); ok {
		return ident.TenantID
	}
	return ""
}

// listOptions parses filter/sort/paging parameters from the query string.
func listOptions(r *http.Request) vault.ListOptions {
	q := r.URL.Query()
	opts := vault.ListOptions{
		SortBy:     q.Get("sort_by"),
		Descending: q.Get("order") == "desc",
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = offset
	}
	return opts
}
