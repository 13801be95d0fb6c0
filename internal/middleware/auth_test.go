package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitewise-backend/internal/identity"
)

// stubAuthProvider accepts exactly one token.
type stubAuthProvider struct {
	token   string
	subject identity.Subject
}

func (p *stubAuthProvider) Authenticate(_ context.Context, token string) (identity.Subject, error) {
	if token != p.token {
		return identity.Subject{}, errors.New("invalid token")
	}
	return p.subject, nil
}

type stubProfileStore struct {
	profiles map[string]identity.Profile
}

func (s *stubProfileStore) ProfileBySubject(_ context.Context, subjectID string) (identity.Profile, error) {
	profile, ok := s.profiles[subjectID]
	if !ok {
		return identity.Profile{}, identity.ErrProfileNotFound
	}
	return profile, nil
}

func newTestIdentityCache() *identity.Cache {
	provider := &stubAuthProvider{
		token:   "good-token",
		subject: identity.Subject{ID: "sub-1", Email: "user@example.com"},
	}
	store := &stubProfileStore{profiles: map[string]identity.Profile{
		"sub-1": {ProfileID: "p-1", TenantID: "tenant-1", Role: "admin"},
	}}
	return identity.NewCache(provider, store, zap.NewNop())
}

func TestAuthenticate_ValidToken(t *testing.T) {
	// Arrange
	ids := newTestIdentityCache()
	var captured *identity.CachedIdentity
	handler := Authenticate(ids, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vaults", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "tenant-1", captured.TenantID)
	assert.Equal(t, "admin", captured.Role)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	// Arrange
	ids := newTestIdentityCache()
	handler := Authenticate(ids, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vaults", nil)
	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	// Arrange
	ids := newTestIdentityCache()
	handler := Authenticate(ids, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vaults", nil)
	req.Header.Set("Authorization", "good-token")
	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	// Arrange
	ids := newTestIdentityCache()
	handler := Authenticate(ids, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vaults", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Authentication required", body["error"])
}

func TestAuthenticate_AuthenticatedButUnprovisioned(t *testing.T) {
	// Arrange: the token is valid but no profile row exists yet
	provider := &stubAuthProvider{
		token:   "good-token",
		subject: identity.Subject{ID: "sub-unprovisioned"},
	}
	store := &stubProfileStore{profiles: map[string]identity.Profile{}}
	ids := identity.NewCache(provider, store, zap.NewNop())

	handler := Authenticate(ids, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vaults", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert: 400, not 401, so clients can distinguish "sign up incomplete"
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Profile not found", body["error"])
}

func TestIdentityFromContext_Absent(t *testing.T) {
	ident, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, ident)
}
