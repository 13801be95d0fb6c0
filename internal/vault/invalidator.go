package vault

import (
	"go.uber.org/zap"

	"sitewise-backend/internal/cache"
	"sitewise-backend/internal/observability"
)

// Invalidator is the hook surface mutation code must call after a write
// commits. Each hook computes the cache-key patterns made stale by the
// mutation and deletes them. A write path that skips its hook does not fail
// at runtime; it serves stale reads for up to one TTL window, which is why
// the contract is enforced here in one place rather than ad hoc at call sites.
type Invalidator struct {
	data    *cache.Cache[any]
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewInvalidator creates the hook surface over the shared data cache.
// metrics may be nil.
func NewInvalidator(data *cache.Cache[any], metrics *observability.Collector, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{data: data, metrics: metrics, logger: logger}
}

// FileCreated invalidates the listings and statistics of the folder the file
// was created in.
func (i *Invalidator) FileCreated(tenantID, vaultID, folderID string) {
	n := i.data.DeletePattern(cache.FileListFolderPattern(vaultID, folderID))
	if i.data.Delete(cache.VaultStatsKey(vaultID)) {
		n++
	}
	i.record("file_created", tenantID, vaultID, n)
}

// FileUpdated invalidates the file's metadata and the listings of its folder.
func (i *Invalidator) FileUpdated(tenantID, vaultID, folderID, fileID string) {
	n := i.data.DeletePattern(cache.FileListFolderPattern(vaultID, folderID))
	if i.data.Delete(cache.FileMetaKey(vaultID, fileID)) {
		n++
	}
	i.record("file_updated", tenantID, vaultID, n)
}

// FileDeleted invalidates the file's metadata, its folder's listings and the
// vault statistics.
func (i *Invalidator) FileDeleted(tenantID, vaultID, folderID, fileID string) {
	n := i.data.DeletePattern(cache.FileListFolderPattern(vaultID, folderID))
	if i.data.Delete(cache.FileMetaKey(vaultID, fileID)) {
		n++
	}
	if i.data.Delete(cache.VaultStatsKey(vaultID)) {
		n++
	}
	i.record("file_deleted", tenantID, vaultID, n)
}

// FileMoved invalidates the listings of both the source and destination
// folders plus the file's metadata.
func (i *Invalidator) FileMoved(tenantID, vaultID, fromFolderID, toFolderID, fileID string) {
	n := i.data.DeletePattern(cache.FileListFolderPattern(vaultID, fromFolderID))
	n += i.data.DeletePattern(cache.FileListFolderPattern(vaultID, toFolderID))
	if i.data.Delete(cache.FileMetaKey(vaultID, fileID)) {
		n++
	}
	i.record("file_moved", tenantID, vaultID, n)
}

// FolderChanged invalidates folder listings under one parent after a folder
// create/rename/delete.
func (i *Invalidator) FolderChanged(tenantID, vaultID, parentID string) {
	n := i.data.DeletePattern(cache.FolderListParentPattern(vaultID, parentID))
	if i.data.Delete(cache.VaultStatsKey(vaultID)) {
		n++
	}
	i.record("folder_changed", tenantID, vaultID, n)
}

// FolderDeleted invalidates folder listings under the parent, the vault
// statistics, and the file listings the deleted folder held.
func (i *Invalidator) FolderDeleted(tenantID, vaultID, parentID, folderID string) {
	n := i.data.DeletePattern(cache.FolderListParentPattern(vaultID, parentID))
	n += i.data.DeletePattern(cache.FileListFolderPattern(vaultID, folderID))
	if i.data.Delete(cache.VaultStatsKey(vaultID)) {
		n++
	}
	i.record("folder_deleted", tenantID, vaultID, n)
}

// BatchChanged invalidates everything cached for one vault. Used after bulk
// operations where computing the precise set of stale folders costs more than
// the cache rebuild it would save.
func (i *Invalidator) BatchChanged(tenantID, vaultID string) {
	n := i.data.DeletePattern(cache.FileListVaultPattern(vaultID))
	n += i.data.DeletePattern(cache.FolderListVaultPattern(vaultID))
	n += i.data.DeletePattern(cache.FileMetaVaultPattern(vaultID))
	if i.data.Delete(cache.VaultStatsKey(vaultID)) {
		n++
	}
	i.record("batch_changed", tenantID, vaultID, n)
}

func (i *Invalidator) record(hook, tenantID, vaultID string, removed int) {
	if i.metrics != nil {
		i.metrics.CacheInvalidations.WithLabelValues(hook).Add(float64(removed))
	}
	i.logger.Debug("Invalidated vault cache entries",
		zap.String("hook", hook),
		zap.String("tenant_id", tenantID),
		zap.String("vault_id", vaultID),
		zap.Int("count", removed),
	)
}
