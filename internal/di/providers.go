// Package di wires the application dependencies.
package di

import (
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"sitewise-backend/internal/cache"
	"sitewise-backend/internal/config"
	"sitewise-backend/internal/identity"
	"sitewise-backend/internal/interfaces/http/rest"
	"sitewise-backend/internal/observability"
	"sitewise-backend/internal/vault"
	"sitewise-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	DataCache  *cache.Cache[any]
	Identities *identity.Cache
	Vaults     *vault.Service
	Metrics    *observability.Collector
	Router     *rest.Router
	Watcher    *config.Watcher
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideSupabaseClient creates the shared Supabase client
func ProvideSupabaseClient(cfg *config.Config) (*supabase.Client, error) {
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is not configured")
	}
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return client, nil
}

// ProvideAuthProvider selects the configured authentication strategy
func ProvideAuthProvider(cfg *config.Config, client *supabase.Client, logger *zap.Logger) (identity.AuthProvider, error) {
	if cfg.AuthMode == "local" {
		verifier, err := auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return nil, err
		}
		return identity.NewLocalAuthProvider(verifier, logger), nil
	}
	return identity.NewSupabaseAuthProvider(client, logger), nil
}

// ProvideProfileStore creates the PostgREST-backed profile store
func ProvideProfileStore(client *supabase.Client, logger *zap.Logger) identity.ProfileStore {
	return identity.NewSupabaseProfileStore(client, logger)
}

// ProvideIdentityCache creates the identity cache
func ProvideIdentityCache(provider identity.AuthProvider, profiles identity.ProfileStore, cfg *config.Config, logger *zap.Logger) *identity.Cache {
	return identity.NewCache(provider, profiles, logger,
		identity.WithMaxEntries(cfg.Cache.IdentityMaxEntries),
		identity.WithTTL(time.Duration(cfg.Cache.IdentityTTLSeconds)*time.Second),
	)
}

// ProvideDataCache creates the shared data cache
func ProvideDataCache(cfg *config.Config, logger *zap.Logger) *cache.Cache[any] {
	return cache.New[any](cfg.Cache.DataMaxEntries, logger)
}

// ProvideCollector creates the metrics collector and publishes cache stats
func ProvideCollector(data *cache.Cache[any], identities *identity.Cache) *observability.Collector {
	collector := observability.NewCollector("sitewise")
	collector.RegisterCacheStats("data", data.Stats)
	collector.RegisterCacheStats("identity", identities.Stats)
	return collector
}

// ProvideInvalidator creates the vault invalidation hook surface
func ProvideInvalidator(data *cache.Cache[any], metrics *observability.Collector, logger *zap.Logger) *vault.Invalidator {
	return vault.NewInvalidator(data, metrics, logger)
}

// ProvideVaultStore creates the PostgREST-backed vault store
func ProvideVaultStore(client *supabase.Client, logger *zap.Logger) vault.Store {
	return vault.NewSupabaseStore(client, logger)
}

// ProvideVaultService creates the cached vault service
func ProvideVaultService(store vault.Store, data *cache.Cache[any], inv *vault.Invalidator, logger *zap.Logger) *vault.Service {
	return vault.NewService(store, data, inv, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	vaults *vault.Service,
	identities *identity.Cache,
	data *cache.Cache[any],
	metrics *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, vaults, identities, data, metrics, logger)
}

// ProvideConfigWatcher creates the config watcher and subscribes the caches
// to cache-tuning changes. A cache whose limits changed on disk is flushed
// rather than resized in place.
func ProvideConfigWatcher(cfg *config.Config, data *cache.Cache[any], identities *identity.Cache, logger *zap.Logger) (*config.Watcher, error) {
	watcher, err := config.NewWatcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	watcher.OnChange(func(fresh *config.Config) {
		data.Clear()
		identities.Clear()
		logger.Info("Caches flushed after configuration change")
	})
	return watcher, nil
}
