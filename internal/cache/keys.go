package cache

import (
	"fmt"
	"strings"
	"time"
)

// Cache keys follow one composite scheme so that wildcard invalidation
// patterns can be matched against them:
//
//	<domain>:<scope-id>:<sub-scope-id or "root">:<filter/sort/paging fingerprint>
//
// The scheme is shared by every feature writing to the common data cache;
// domain prefixes keep the shared namespace collision-free.

// TTL policy constants. Call sites pick the constant matching the volatility
// of what they cache; identity is short so role changes propagate quickly.
const (
	FileListTTL   = 30 * time.Second
	FolderListTTL = 60 * time.Second
	VaultStatsTTL = 180 * time.Second
	FileMetaTTL   = 60 * time.Second
	IdentityTTL   = 60 * time.Second
)

// Domain prefixes for the shared data cache.
const (
	domainFiles    = "files"
	domainFolders  = "folders"
	domainStats    = "stats"
	domainFileMeta = "filemeta"
)

// RootFolder is the sub-scope segment used when a listing is not scoped to a
// folder.
const RootFolder = "root"

// FileListKey is the cache key for a file listing in one vault folder with the
// given filter fingerprint.
func FileListKey(vaultID, folderID, fingerprint string) string {
	return join(domainFiles, vaultID, folderOrRoot(folderID), fingerprint)
}

// FolderListKey is the cache key for a folder listing under one parent folder.
func FolderListKey(vaultID, parentID, fingerprint string) string {
	return join(domainFolders, vaultID, folderOrRoot(parentID), fingerprint)
}

// VaultStatsKey is the cache key for aggregate statistics of one vault.
func VaultStatsKey(vaultID string) string {
	return join(domainStats, vaultID, RootFolder, "all")
}

// FileMetaKey is the cache key for a single file's metadata.
func FileMetaKey(vaultID, fileID string) string {
	return join(domainFileMeta, vaultID, fileID, "meta")
}

// VaultPattern matches every cached entry of one domain in one vault.
func VaultPattern(domain, vaultID string) string {
	return domain + ":" + vaultID + ":*"
}

// FolderPattern matches every cached entry of one domain under one folder.
func FolderPattern(domain, vaultID, folderID string) string {
	return domain + ":" + vaultID + ":" + folderOrRoot(folderID) + ":*"
}

// FileListVaultPattern matches all file listings in a vault.
func FileListVaultPattern(vaultID string) string {
	return VaultPattern(domainFiles, vaultID)
}

// FileListFolderPattern matches all file listings under one folder.
func FileListFolderPattern(vaultID, folderID string) string {
	return FolderPattern(domainFiles, vaultID, folderID)
}

// FolderListVaultPattern matches all folder listings in a vault.
func FolderListVaultPattern(vaultID string) string {
	return VaultPattern(domainFolders, vaultID)
}

// FolderListParentPattern matches all folder listings under one parent.
func FolderListParentPattern(vaultID, parentID string) string {
	return FolderPattern(domainFolders, vaultID, parentID)
}

// FileMetaVaultPattern matches all cached file metadata in a vault.
func FileMetaVaultPattern(vaultID string) string {
	return VaultPattern(domainFileMeta, vaultID)
}

// Fingerprint canonicalizes filter/sort/paging parameters into a stable key
// segment. Identical parameters always produce identical fingerprints; an
// empty parameter list fingerprints as "all".
func Fingerprint(params ...any) string {
	if len(params) == 0 {
		return "all"
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, toString(p))
	}
	return strings.Join(parts, ",")
}

func folderOrRoot(folderID string) string {
	if folderID == "" {
		return RootFolder
	}
	return folderID
}

func join(segments ...string) string {
	return strings.Join(segments, ":")
}

// toString converts a parameter to its key-segment representation.
func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
