package identity

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	apperrors "sitewise-backend/pkg/errors"
)

// SupabaseAuthProvider resolves the caller by asking GoTrue who the bearer
// token belongs to.
type SupabaseAuthProvider struct {
	client *supabase.Client
	logger *zap.Logger
}

// NewSupabaseAuthProvider creates the GoTrue-backed auth provider.
func NewSupabaseAuthProvider(client *supabase.Client, logger *zap.Logger) *SupabaseAuthProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupabaseAuthProvider{client: client, logger: logger}
}

// Authenticate validates the token against the auth service. The GetUser call
// chained off WithToken carries the context inside its underlying HTTP request.
func (p *SupabaseAuthProvider) Authenticate(ctx context.Context, token string) (Subject, error) {
	if token == "" {
		return Subject{}, ErrUnauthorized
	}

	user, err := p.client.Auth.WithToken(token).GetUser()
	if err != nil {
		p.logger.Debug("Token rejected by auth service", zap.Error(err))
		return Subject{}, ErrUnauthorized
	}

	return Subject{
		ID:    user.ID.String(),
		Email: user.Email,
	}, nil
}

// profileRow is the PostgREST row shape for the profiles table.
type profileRow struct {
	ID       string `json:"id"`
	TenantID string `json:"company_id"`
	Role     string `json:"role"`
}

// SupabaseProfileStore looks up profiles over PostgREST. The query runs behind
// a circuit breaker: a struggling profile store should shed load quickly
// instead of stalling every request that misses the identity cache.
type SupabaseProfileStore struct {
	client  *supabase.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewSupabaseProfileStore creates the PostgREST-backed profile store.
func NewSupabaseProfileStore(client *supabase.Client, logger *zap.Logger) *SupabaseProfileStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "profile-store",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A missing profile is an answer, not a store failure.
			return err == nil || errors.Is(err, ErrProfileNotFound)
		},
	})

	return &SupabaseProfileStore{client: client, breaker: breaker, logger: logger}
}

// ProfileBySubject returns the tenant/profile/role tuple for a subject id.
func (s *SupabaseProfileStore) ProfileBySubject(ctx context.Context, subjectID string) (Profile, error) {
	v, err := s.breaker.Execute(func() (any, error) {
		var rows []profileRow
		_, err := s.client.From("profiles").
			Select("id,company_id,role", "", false).
			Eq("auth_user_id", subjectID).
			Limit(1, "").
			ExecuteTo(&rows)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, ErrProfileNotFound
		}
		return rows[0], nil
	})
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, apperrors.Wrap(err, "profile query failed")
	}

	row := v.(profileRow)
	return Profile{
		ProfileID: row.ID,
		TenantID:  row.TenantID,
		Role:      row.Role,
	}, nil
}
