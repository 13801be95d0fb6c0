package vault

import (
	"context"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	apperrors "sitewise-backend/pkg/errors"
)

const (
	filesTable   = "vault_files"
	foldersTable = "vault_folders"
)

// sortColumns whitelists the listing sort keys the store accepts.
var sortColumns = map[string]string{
	"name":       "name",
	"size":       "size",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// SupabaseStore is the PostgREST-backed system of record for vault contents.
type SupabaseStore struct {
	client *supabase.Client
	logger *zap.Logger
}

// NewSupabaseStore creates the PostgREST-backed vault store.
func NewSupabaseStore(client *supabase.Client, logger *zap.Logger) *SupabaseStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupabaseStore{client: client, logger: logger}
}

// ListFiles returns the files of one vault folder.
func (s *SupabaseStore) ListFiles(ctx context.Context, vaultID, folderID string, opts ListOptions) ([]File, error) {
	query := s.client.From(filesTable).
		Select("*", "", false).
		Eq("vault_id", vaultID)

	if folderID == "" {
		query = query.Is("folder_id", "null")
	} else {
		query = query.Eq("folder_id", folderID)
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	query = query.Order(column, &postgrest.OrderOpts{Ascending: !opts.Descending})

	if opts.Limit > 0 {
		query = query.Range(opts.Offset, opts.Offset+opts.Limit-1, "")
	}

	var files []File
	if _, err := query.ExecuteTo(&files); err != nil {
		return nil, apperrors.NewInternal("query files", err)
	}
	return files, nil
}

// ListFolders returns the folders under one parent.
func (s *SupabaseStore) ListFolders(ctx context.Context, vaultID, parentID string) ([]Folder, error) {
	query := s.client.From(foldersTable).
		Select("*", "", false).
		Eq("vault_id", vaultID)

	if parentID == "" {
		query = query.Is("parent_id", "null")
	} else {
		query = query.Eq("parent_id", parentID)
	}

	var folders []Folder
	if _, err := query.Order("name", &postgrest.OrderOpts{Ascending: true}).ExecuteTo(&folders); err != nil {
		return nil, apperrors.NewInternal("query folders", err)
	}
	return folders, nil
}

// VaultStats aggregates file and folder counts plus total size for one vault.
// Two narrow queries instead of an RPC; the result is cached for minutes.
func (s *SupabaseStore) VaultStats(ctx context.Context, vaultID string) (Stats, error) {
	var files []struct {
		Size int64 `json:"size"`
	}
	if _, err := s.client.From(filesTable).
		Select("size", "", false).
		Eq("vault_id", vaultID).
		ExecuteTo(&files); err != nil {
		return Stats{}, apperrors.NewInternal("query file sizes", err)
	}

	var folders []struct {
		ID string `json:"id"`
	}
	if _, err := s.client.From(foldersTable).
		Select("id", "", false).
		Eq("vault_id", vaultID).
		ExecuteTo(&folders); err != nil {
		return Stats{}, apperrors.NewInternal("query folder count", err)
	}

	stats := Stats{
		FileCount:   len(files),
		FolderCount: len(folders),
	}
	for _, f := range files {
		stats.TotalSize += f.Size
	}
	return stats, nil
}

// GetFile returns one file by id.
func (s *SupabaseStore) GetFile(ctx context.Context, vaultID, fileID string) (File, error) {
	var files []File
	if _, err := s.client.From(filesTable).
		Select("*", "", false).
		Eq("vault_id", vaultID).
		Eq("id", fileID).
		Limit(1, "").
		ExecuteTo(&files); err != nil {
		return File{}, apperrors.NewInternal("query file", err)
	}
	if len(files) == 0 {
		return File{}, apperrors.NewNotFound("file not found")
	}
	return files[0], nil
}

// CreateFile inserts a file row and returns the stored representation.
func (s *SupabaseStore) CreateFile(ctx context.Context, file File) (File, error) {
	var rows []File
	if _, err := s.client.From(filesTable).
		Insert(file, false, "", "representation", "").
		ExecuteTo(&rows); err != nil {
		return File{}, apperrors.NewInternal("insert file", err)
	}
	if len(rows) == 0 {
		return File{}, apperrors.NewInternal("insert file returned no row", nil)
	}
	return rows[0], nil
}

// UpdateFile updates a file's mutable columns.
func (s *SupabaseStore) UpdateFile(ctx context.Context, file File) (File, error) {
	payload := map[string]any{
		"name":         file.Name,
		"content_type": file.ContentType,
	}

	var rows []File
	if _, err := s.client.From(filesTable).
		Update(payload, "representation", "").
		Eq("vault_id", file.VaultID).
		Eq("id", file.ID).
		ExecuteTo(&rows); err != nil {
		return File{}, apperrors.NewInternal("update file", err)
	}
	if len(rows) == 0 {
		return File{}, apperrors.NewNotFound("file not found")
	}
	return rows[0], nil
}

// DeleteFile removes one file row.
func (s *SupabaseStore) DeleteFile(ctx context.Context, vaultID, fileID string) error {
	var rows []File
	if _, err := s.client.From(filesTable).
		Delete("representation", "").
		Eq("vault_id", vaultID).
		Eq("id", fileID).
		ExecuteTo(&rows); err != nil {
		return apperrors.NewInternal("delete file", err)
	}
	return nil
}

// MoveFile reassigns a file to another folder.
func (s *SupabaseStore) MoveFile(ctx context.Context, vaultID, fileID, toFolderID string) (File, error) {
	payload := map[string]any{"folder_id": toFolderID}
	if toFolderID == "" {
		payload["folder_id"] = nil
	}

	var rows []File
	if _, err := s.client.From(filesTable).
		Update(payload, "representation", "").
		Eq("vault_id", vaultID).
		Eq("id", fileID).
		ExecuteTo(&rows); err != nil {
		return File{}, apperrors.NewInternal("move file", err)
	}
	if len(rows) == 0 {
		return File{}, apperrors.NewNotFound("file not found")
	}
	return rows[0], nil
}

// GetFolder returns one folder by id.
func (s *SupabaseStore) GetFolder(ctx context.Context, vaultID, folderID string) (Folder, error) {
	var folders []Folder
	if _, err := s.client.From(foldersTable).
		Select("*", "", false).
		Eq("vault_id", vaultID).
		Eq("id", folderID).
		Limit(1, "").
		ExecuteTo(&folders); err != nil {
		return Folder{}, apperrors.NewInternal("query folder", err)
	}
	if len(folders) == 0 {
		return Folder{}, apperrors.NewNotFound("folder not found")
	}
	return folders[0], nil
}

// CreateFolder inserts a folder row and returns the stored representation.
func (s *SupabaseStore) CreateFolder(ctx context.Context, folder Folder) (Folder, error) {
	var rows []Folder
	if _, err := s.client.From(foldersTable).
		Insert(folder, false, "", "representation", "").
		ExecuteTo(&rows); err != nil {
		return Folder{}, apperrors.NewInternal("insert folder", err)
	}
	if len(rows) == 0 {
		return Folder{}, apperrors.NewInternal("insert folder returned no row", nil)
	}
	return rows[0], nil
}

// RenameFolder updates a folder's name.
func (s *SupabaseStore) RenameFolder(ctx context.Context, vaultID, folderID, name string) (Folder, error) {
	var rows []Folder
	if _, err := s.client.From(foldersTable).
		Update(map[string]any{"name": name}, "representation", "").
		Eq("vault_id", vaultID).
		Eq("id", folderID).
		ExecuteTo(&rows); err != nil {
		return Folder{}, apperrors.NewInternal("rename folder", err)
	}
	if len(rows) == 0 {
		return Folder{}, apperrors.NewNotFound("folder not found")
	}
	return rows[0], nil
}

// DeleteFolder removes one folder row.
func (s *SupabaseStore) DeleteFolder(ctx context.Context, vaultID, folderID string) error {
	var rows []Folder
	if _, err := s.client.From(foldersTable).
		Delete("representation", "").
		Eq("vault_id", vaultID).
		Eq("id", folderID).
		ExecuteTo(&rows); err != nil {
		return apperrors.NewInternal("delete folder", err)
	}
	return nil
}

// DeleteFiles removes a batch of file rows in one statement.
func (s *SupabaseStore) DeleteFiles(ctx context.Context, vaultID string, fileIDs []string) error {
	var rows []File
	if _, err := s.client.From(filesTable).
		Delete("representation", "").
		Eq("vault_id", vaultID).
		In("id", fileIDs).
		ExecuteTo(&rows); err != nil {
		return apperrors.NewInternal("delete files", err)
	}
	return nil
}
