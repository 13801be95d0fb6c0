// Package identity resolves the authenticated caller to a tenant/profile/role
// tuple and caches the result, so that the profile-store round trip is not
// paid on every request.
package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"sitewise-backend/internal/cache"
	apperrors "sitewise-backend/pkg/errors"
)

var (
	// ErrUnauthorized is returned when no authenticated caller can be
	// established from the request credential.
	ErrUnauthorized = apperrors.NewUnauthorized("no authenticated caller")

	// ErrProfileNotFound is returned when the caller authenticated but has no
	// profile or no tenant assignment. Never cached.
	ErrProfileNotFound = apperrors.NewNotFound("profile not found for caller")
)

// Subject is the auth provider's view of the caller: an opaque subject id and
// an optional email.
type Subject struct {
	ID    string
	Email string
}

// Profile is the profile store's view of the caller.
type Profile struct {
	ProfileID string
	TenantID  string
	Role      string
}

// AuthProvider establishes who the current caller is from a live request
// credential. This step depends on the request and is never cached.
type AuthProvider interface {
	Authenticate(ctx context.Context, token string) (Subject, error)
}

// ProfileStore looks up tenant id, profile id and role by subject id.
// Implementations return ErrProfileNotFound when the subject has no profile.
type ProfileStore interface {
	ProfileBySubject(ctx context.Context, subjectID string) (Profile, error)
}

// CachedIdentity is a resolved caller at a point in time.
type CachedIdentity struct {
	SubjectID string
	Email     string
	TenantID  string
	ProfileID string
	Role      string
	CachedAt  time.Time
}

// Defaults. The TTL is deliberately short so profile and role changes
// propagate within a minute even when an invalidation is missed.
const (
	DefaultMaxEntries = 500
	DefaultTTL        = cache.IdentityTTL
)

// Cache caches resolved identities keyed by the provider's subject id.
// It shares the LRU/TTL design of the generic data cache but is its own
// instance: its keys, values and invalidation triggers are all different.
type Cache struct {
	provider AuthProvider
	profiles ProfileStore
	entries  *cache.Cache[CachedIdentity]
	ttl      time.Duration
	now      func() time.Time
	group    singleflight.Group
	logger   *zap.Logger
}

// Option configures optional identity cache behavior.
type Option func(*config)

type config struct {
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// WithMaxEntries overrides the default capacity.
func WithMaxEntries(n int) Option {
	return func(c *config) { c.maxEntries = n }
}

// WithTTL overrides the default entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

// WithClock overrides the time source. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// NewCache creates an identity cache backed by the given collaborators.
func NewCache(provider AuthProvider, profiles ProfileStore, logger *zap.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := config{
		maxEntries: DefaultMaxEntries,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cache{
		provider: provider,
		profiles: profiles,
		entries:  cache.New[CachedIdentity](cfg.maxEntries, logger, cache.WithClock(cfg.now)),
		ttl:      cfg.ttl,
		now:      cfg.now,
		logger:   logger,
	}
}

// Resolve establishes who the caller is. The auth provider is consulted on
// every call; only the profile-store round trip is skipped on a cache hit.
// wasCached reports whether the identity came from the cache.
//
// Failures are never cached: a caller whose profile lookup failed resolves
// normally on the next attempt.
func (c *Cache) Resolve(ctx context.Context, token string) (*CachedIdentity, bool, error) {
	subject, err := c.provider.Authenticate(ctx, token)
	if err != nil {
		c.logger.Debug("Authentication failed", zap.Error(err))
		return nil, false, ErrUnauthorized
	}
	if subject.ID == "" {
		return nil, false, ErrUnauthorized
	}

	if ident, ok := c.entries.Get(subject.ID); ok {
		return &ident, true, nil
	}

	// Coalesce concurrent misses for the same subject into one lookup.
	v, err, _ := c.group.Do(subject.ID, func() (any, error) {
		if ident, ok := c.entries.Get(subject.ID); ok {
			return ident, nil
		}
		return c.lookup(ctx, subject)
	})
	if err != nil {
		return nil, false, err
	}

	ident := v.(CachedIdentity)
	return &ident, false, nil
}

func (c *Cache) lookup(ctx context.Context, subject Subject) (CachedIdentity, error) {
	profile, err := c.profiles.ProfileBySubject(ctx, subject.ID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) || apperrors.IsNotFound(err) {
			return CachedIdentity{}, ErrProfileNotFound
		}
		return CachedIdentity{}, apperrors.Wrap(err, "profile lookup failed")
	}
	if profile.TenantID == "" {
		// A profile without a tenant assignment cannot act in the system.
		return CachedIdentity{}, ErrProfileNotFound
	}

	ident := CachedIdentity{
		SubjectID: subject.ID,
		Email:     subject.Email,
		TenantID:  profile.TenantID,
		ProfileID: profile.ProfileID,
		Role:      profile.Role,
		CachedAt:  c.now(),
	}
	c.entries.Set(subject.ID, ident, c.ttl)

	c.logger.Debug("Cached identity",
		zap.String("subject_id", subject.ID),
		zap.String("tenant_id", profile.TenantID),
	)

	return ident, nil
}

// Invalidate removes the cached identity for one subject. Logout and profile
// edit flows must call this; the cache cannot observe those events itself.
func (c *Cache) Invalidate(subjectID string) bool {
	return c.entries.Delete(subjectID)
}

// InvalidateTenant removes every cached identity belonging to the tenant.
// This is a full scan: the cache keeps no tenant index because tenant-wide
// invalidation is rare next to per-request reads.
func (c *Cache) InvalidateTenant(tenantID string) int {
	removed := c.entries.DeleteFunc(func(_ string, ident CachedIdentity) bool {
		return ident.TenantID == tenantID
	})
	if removed > 0 {
		c.logger.Info("Invalidated tenant identities",
			zap.String("tenant_id", tenantID),
			zap.Int("count", removed),
		)
	}
	return removed
}

// Clear empties the cache. Used when cache tuning changes at runtime.
func (c *Cache) Clear() {
	c.entries.Clear()
}

// Stats returns a snapshot of the underlying cache statistics.
func (c *Cache) Stats() cache.Stats {
	return c.entries.Stats()
}

// StartCleanup starts the periodic expired-entry sweep.
func (c *Cache) StartCleanup(interval time.Duration) {
	c.entries.StartCleanup(interval)
}
