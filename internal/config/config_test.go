package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "remote", cfg.AuthMode)
	assert.Equal(t, 1000, cfg.Cache.DataMaxEntries)
	assert.Equal(t, 500, cfg.Cache.IdentityMaxEntries)
	assert.Equal(t, 60, cfg.Cache.IdentityTTLSeconds)
	assert.Equal(t, 60, cfg.Cache.CleanupIntervalSeconds)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	// Arrange
	t.Setenv("SERVER_ADDRESS", ":9000")
	t.Setenv("CACHE_DATA_MAX_ENTRIES", "250")
	t.Setenv("CACHE_IDENTITY_TTL_SECONDS", "120")
	t.Setenv("ENABLE_CORS", "false")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ServerAddress)
	assert.Equal(t, 250, cfg.Cache.DataMaxEntries)
	assert.Equal(t, 120, cfg.Cache.IdentityTTLSeconds)
	assert.False(t, cfg.EnableCORS)
}

func TestLoadConfig_FileThenEnvPrecedence(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server_address: \":7000\"\ncache:\n  data_max_entries: 50\n  identity_max_entries: 25\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CACHE_DATA_MAX_ENTRIES", "75")

	// Act
	cfg, err := LoadConfig()

	// Assert: env beats file, file beats default
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ServerAddress)
	assert.Equal(t, 75, cfg.Cache.DataMaxEntries)
	assert.Equal(t, 25, cfg.Cache.IdentityMaxEntries)
}

func TestLoadConfig_InvalidCacheTuning(t *testing.T) {
	// Arrange
	t.Setenv("CACHE_DATA_MAX_ENTRIES", "0")

	// Act
	_, err := LoadConfig()

	// Assert
	assert.Error(t, err)
}

func TestLoadConfig_InvalidEnvironment(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "sandbox")

	// Act
	_, err := LoadConfig()

	// Assert
	assert.Error(t, err)
}

func TestValidate_ProductionRequiresSupabase(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")

	// Act
	_, err := LoadConfig()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
}

func TestValidate_LocalAuthRequiresSecret(t *testing.T) {
	// Arrange
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("JWT_SECRET", "")

	// Act
	_, err := LoadConfig()

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_LocalAuthWithSecret(t *testing.T) {
	// Arrange
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("JWT_SECRET", "test-secret")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.AuthMode)
}
