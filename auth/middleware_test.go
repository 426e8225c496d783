package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func identityEchoHandler(t *testing.T, gotID *string, gotOK *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotID, *gotOK = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingToken(t *testing.T) {
	req := require.New(t)

	var id string
	var ok bool
	handler := RequireAuth(identityEchoHandler(t, &id, &ok))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/history", nil))

	req.Equal(http.StatusUnauthorized, rec.Code)
	req.False(ok)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	req := require.New(t)

	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	r := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("farmer-1", []string{"user"}, time.Hour)
	req.NoError(err)

	var id string
	var ok bool
	handler := RequireAuth(identityEchoHandler(t, &id, &ok))

	r := httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	req.Equal(http.StatusOK, rec.Code)
	req.True(ok)
	req.Equal("farmer-1", id)
}

func TestAttachIdentity_GuestPassesThrough(t *testing.T) {
	req := require.New(t)

	var id string
	var ok bool
	handler := AttachIdentity(identityEchoHandler(t, &id, &ok))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	req.Equal(http.StatusOK, rec.Code)
	req.False(ok, "guest request carries no identity")
}
