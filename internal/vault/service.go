package vault

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"sitewise-backend/internal/cache"
	apperrors "sitewise-backend/pkg/errors"
)

// Service brackets vault reads with the shared data cache and calls the
// invalidation hooks after mutations. All read shapes share one any-typed
// cache instance; the domain prefix in the key scheme keeps them apart.
type Service struct {
	store  Store
	data   *cache.Cache[any]
	inv    *Invalidator
	tracer trace.Tracer
	logger *zap.Logger
}

// NewService creates the cached vault service.
func NewService(store Store, data *cache.Cache[any], inv *Invalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		data:   data,
		inv:    inv,
		tracer: otel.Tracer("sitewise/vault"),
		logger: logger,
	}
}

// ListFiles returns the files of one vault folder, cached for FileListTTL.
func (s *Service) ListFiles(ctx context.Context, vaultID, folderID string, opts ListOptions) ([]File, error) {
	ctx, span := s.tracer.Start(ctx, "vault.ListFiles",
		trace.WithAttributes(attribute.String("vault.id", vaultID)))
	defer span.End()

	key := cache.FileListKey(vaultID, folderID, opts.Fingerprint())
	if v, ok := s.data.Get(key); ok {
		if files, ok := v.([]File); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return files, nil
		}
	}

	files, err := s.store.ListFiles(ctx, vaultID, folderID, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, "list files")
	}

	s.data.Set(key, files, cache.FileListTTL)
	return files, nil
}

// ListFolders returns the folders under one parent, cached for FolderListTTL.
func (s *Service) ListFolders(ctx context.Context, vaultID, parentID string) ([]Folder, error) {
	ctx, span := s.tracer.Start(ctx, "vault.ListFolders",
		trace.WithAttributes(attribute.String("vault.id", vaultID)))
	defer span.End()

	key := cache.FolderListKey(vaultID, parentID, "all")
	if v, ok := s.data.Get(key); ok {
		if folders, ok := v.([]Folder); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return folders, nil
		}
	}

	folders, err := s.store.ListFolders(ctx, vaultID, parentID)
	if err != nil {
		return nil, apperrors.Wrap(err, "list folders")
	}

	s.data.Set(key, folders, cache.FolderListTTL)
	return folders, nil
}

// VaultStats returns aggregate statistics for one vault, cached for
// VaultStatsTTL.
func (s *Service) VaultStats(ctx context.Context, vaultID string) (Stats, error) {
	ctx, span := s.tracer.Start(ctx, "vault.VaultStats",
		trace.WithAttributes(attribute.String("vault.id", vaultID)))
	defer span.End()

	key := cache.VaultStatsKey(vaultID)
	if v, ok := s.data.Get(key); ok {
		if stats, ok := v.(Stats); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return stats, nil
		}
	}

	stats, err := s.store.VaultStats(ctx, vaultID)
	if err != nil {
		return Stats{}, apperrors.Wrap(err, "vault stats")
	}

	s.data.Set(key, stats, cache.VaultStatsTTL)
	return stats, nil
}

// GetFile returns one file's metadata, cached for FileMetaTTL.
func (s *Service) GetFile(ctx context.Context, vaultID, fileID string) (File, error) {
	ctx, span := s.tracer.Start(ctx, "vault.GetFile",
		trace.WithAttributes(attribute.String("vault.id", vaultID)))
	defer span.End()

	key := cache.FileMetaKey(vaultID, fileID)
	if v, ok := s.data.Get(key); ok {
		if file, ok := v.(File); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return file, nil
		}
	}

	file, err := s.store.GetFile(ctx, vaultID, fileID)
	if err != nil {
		return File{}, err
	}

	s.data.Set(key, file, cache.FileMetaTTL)
	return file, nil
}

// CreateFile writes a file to the store, then invalidates the listings the
// write made stale. The hook runs synchronously after the write commits.
func (s *Service) CreateFile(ctx context.Context, tenantID string, file File) (File, error) {
	ctx, span := s.tracer.Start(ctx, "vault.CreateFile")
	defer span.End()

	created, err := s.store.CreateFile(ctx, file)
	if err != nil {
		return File{}, apperrors.Wrap(err, "create file")
	}

	s.inv.FileCreated(tenantID, created.VaultID, created.FolderID)
	return created, nil
}

// UpdateFile updates a file in the store and invalidates its metadata and
// folder listings.
func (s *Service) UpdateFile(ctx context.Context, tenantID string, file File) (File, error) {
	ctx, span := s.tracer.Start(ctx, "vault.UpdateFile")
	defer span.End()

	updated, err := s.store.UpdateFile(ctx, file)
	if err != nil {
		return File{}, apperrors.Wrap(err, "update file")
	}

	s.inv.FileUpdated(tenantID, updated.VaultID, updated.FolderID, updated.ID)
	return updated, nil
}

// DeleteFile removes a file and invalidates everything that listed it.
func (s *Service) DeleteFile(ctx context.Context, tenantID, vaultID, fileID string) error {
	ctx, span := s.tracer.Start(ctx, "vault.DeleteFile")
	defer span.End()

	file, err := s.store.GetFile(ctx, vaultID, fileID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFile(ctx, vaultID, fileID); err != nil {
		return apperrors.Wrap(err, "delete file")
	}

	s.inv.FileDeleted(tenantID, vaultID, file.FolderID, fileID)
	return nil
}

// MoveFile moves a file between folders and invalidates both folders'
// listings.
func (s *Service) MoveFile(ctx context.Context, tenantID, vaultID, fileID, toFolderID string) (File, error) {
	ctx, span := s.tracer.Start(ctx, "vault.MoveFile")
	defer span.End()

	file, err := s.store.GetFile(ctx, vaultID, fileID)
	if err != nil {
		return File{}, err
	}
	fromFolderID := file.FolderID

	moved, err := s.store.MoveFile(ctx, vaultID, fileID, toFolderID)
	if err != nil {
		return File{}, apperrors.Wrap(err, "move file")
	}

	s.inv.FileMoved(tenantID, vaultID, fromFolderID, toFolderID, fileID)
	return moved, nil
}

// CreateFolder adds a folder and invalidates its parent's folder listings.
func (s *Service) CreateFolder(ctx context.Context, tenantID string, folder Folder) (Folder, error) {
	ctx, span := s.tracer.Start(ctx, "vault.CreateFolder")
	defer span.End()

	created, err := s.store.CreateFolder(ctx, folder)
	if err != nil {
		return Folder{}, apperrors.Wrap(err, "create folder")
	}

	s.inv.FolderChanged(tenantID, created.VaultID, created.ParentID)
	return created, nil
}

// RenameFolder renames a folder and invalidates its parent's folder listings.
func (s *Service) RenameFolder(ctx context.Context, tenantID, vaultID, folderID, name string) (Folder, error) {
	ctx, span := s.tracer.Start(ctx, "vault.RenameFolder")
	defer span.End()

	renamed, err := s.store.RenameFolder(ctx, vaultID, folderID, name)
	if err != nil {
		return Folder{}, apperrors.Wrap(err, "rename folder")
	}

	s.inv.FolderChanged(tenantID, vaultID, renamed.ParentID)
	return renamed, nil
}

// DeleteFolder removes a folder and invalidates its parent's folder listings
// plus the file listings the folder held.
func (s *Service) DeleteFolder(ctx context.Context, tenantID, vaultID, folderID string) error {
	ctx, span := s.tracer.Start(ctx, "vault.DeleteFolder")
	defer span.End()

	folder, err := s.store.GetFolder(ctx, vaultID, folderID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFolder(ctx, vaultID, folderID); err != nil {
		return apperrors.Wrap(err, "delete folder")
	}

	s.inv.FolderDeleted(tenantID, vaultID, folder.ParentID, folderID)
	return nil
}

// DeleteFiles removes a batch of files and wipes the vault's cached state in
// one sweep rather than hook-per-file.
func (s *Service) DeleteFiles(ctx context.Context, tenantID, vaultID string, fileIDs []string) error {
	ctx, span := s.tracer.Start(ctx, "vault.DeleteFiles")
	defer span.End()

	if len(fileIDs) == 0 {
		return apperrors.NewValidation("no file ids given")
	}
	if err := s.store.DeleteFiles(ctx, vaultID, fileIDs); err != nil {
		return apperrors.Wrap(err, "delete files")
	}

	s.inv.BatchChanged(tenantID, vaultID)
	return nil
}
