package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileListKey(t *testing.T) {
	assert.Equal(t, "files:v1:f2:name,asc,0,50", FileListKey("v1", "f2", "name,asc,0,50"))
	assert.Equal(t, "files:v1:root:all", FileListKey("v1", "", "all"))
}

func TestFolderListKey(t *testing.T) {
	assert.Equal(t, "folders:v1:p3:all", FolderListKey("v1", "p3", "all"))
	assert.Equal(t, "folders:v1:root:all", FolderListKey("v1", "", "all"))
}

func TestVaultStatsKey(t *testing.T) {
	assert.Equal(t, "stats:v1:root:all", VaultStatsKey("v1"))
}

func TestFileMetaKey(t *testing.T) {
	assert.Equal(t, "filemeta:v1:f9:meta", FileMetaKey("v1", "f9"))
}

func TestPatterns_MatchTheirKeys(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		matches []string
		misses  []string
	}{
		{
			name:    "vault-wide file listings",
			pattern: FileListVaultPattern("v1"),
			matches: []string{FileListKey("v1", "", "all"), FileListKey("v1", "f2", "name,asc")},
			misses:  []string{FileListKey("v2", "", "all"), FolderListKey("v1", "", "all")},
		},
		{
			name:    "folder-scoped file listings",
			pattern: FileListFolderPattern("v1", "f2"),
			matches: []string{FileListKey("v1", "f2", "all"), FileListKey("v1", "f2", "size,desc")},
			misses:  []string{FileListKey("v1", "f3", "all"), FileListKey("v1", "", "all")},
		},
		{
			name:    "root file listings",
			pattern: FileListFolderPattern("v1", ""),
			matches: []string{FileListKey("v1", "", "all")},
			misses:  []string{FileListKey("v1", "f2", "all")},
		},
		{
			name:    "vault-wide folder listings",
			pattern: FolderListVaultPattern("v1"),
			matches: []string{FolderListKey("v1", "p1", "all")},
			misses:  []string{FileListKey("v1", "p1", "all")},
		},
		{
			name:    "vault-wide file metadata",
			pattern: FileMetaVaultPattern("v1"),
			matches: []string{FileMetaKey("v1", "f9")},
			misses:  []string{FileMetaKey("v2", "f9")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := compilePattern(tt.pattern)
			for _, key := range tt.matches {
				assert.True(t, match(key), "pattern %q should match %q", tt.pattern, key)
			}
			for _, key := range tt.misses {
				assert.False(t, match(key), "pattern %q should not match %q", tt.pattern, key)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "all", Fingerprint())
	assert.Equal(t, "name,asc,0,50", Fingerprint("name", "asc", 0, 50))
	assert.Equal(t, "true,-1", Fingerprint(true, int64(-1)))

	// Same inputs, same fingerprint
	assert.Equal(t, Fingerprint("a", 1), Fingerprint("a", 1))
}
