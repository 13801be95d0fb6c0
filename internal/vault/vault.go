// Package vault implements the cached read paths and invalidation hooks for
// the file-vault feature, the primary client of the shared data cache.
package vault

import (
	"context"
	"time"

	"sitewise-backend/internal/cache"
)

// File is a stored document within a vault folder.
type File struct {
	ID          string    `json:"id"`
	VaultID     string    `json:"vault_id"`
	FolderID    string    `json:"folder_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Folder groups files within a vault.
type Folder struct {
	ID        string    `json:"id"`
	VaultID   string    `json:"vault_id"`
	ParentID  string    `json:"parent_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats are aggregate numbers for one vault.
type Stats struct {
	FileCount   int   `json:"file_count"`
	FolderCount int   `json:"folder_count"`
	TotalSize   int64 `json:"total_size"`
}

// ListOptions carry the filter/sort/paging parameters of a listing. They are
// part of the cache key: two listings with different options cache separately.
type ListOptions struct {
	SortBy     string
	Descending bool
	Limit      int
	Offset     int
}

// Fingerprint canonicalizes the options into a cache key segment.
func (o ListOptions) Fingerprint() string {
	return cache.Fingerprint(o.SortBy, o.Descending, o.Limit, o.Offset)
}

// Store is the system of record for vault contents. The cache layer sits in
// front of it; the system must remain correct if every read goes to the store.
type Store interface {
	ListFiles(ctx context.Context, vaultID, folderID string, opts ListOptions) ([]File, error)
	ListFolders(ctx context.Context, vaultID, parentID string) ([]Folder, error)
	VaultStats(ctx context.Context, vaultID string) (Stats, error)
	GetFile(ctx context.Context, vaultID, fileID string) (File, error)
	CreateFile(ctx context.Context, file File) (File, error)
	UpdateFile(ctx context.Context, file File) (File, error)
	DeleteFile(ctx context.Context, vaultID, fileID string) error
	MoveFile(ctx context.Context, vaultID, fileID, toFolderID string) (File, error)
	DeleteFiles(ctx context.Context, vaultID string, fileIDs []string) error
	GetFolder(ctx context.Context, vaultID, folderID string) (Folder, error)
	CreateFolder(ctx context.Context, folder Folder) (Folder, error)
	RenameFolder(ctx context.Context, vaultID, folderID, name string) (Folder, error)
	DeleteFolder(ctx context.Context, vaultID, folderID string) error
}
