//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"sitewise-backend/internal/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideSupabaseClient,
	ProvideAuthProvider,
	ProvideProfileStore,
	ProvideIdentityCache,
	ProvideDataCache,
	ProvideCollector,
	ProvideInvalidator,
	ProvideVaultStore,
	ProvideVaultService,
	ProvideRouter,
	ProvideConfigWatcher,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
