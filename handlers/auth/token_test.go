package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	token, err := GenerateToken("a2f0c9d4-0000-0000-0000-000000000001")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	userID, err := GetUserIDFromToken(req)
	require.NoError(t, err)
	assert.Equal(t, "a2f0c9d4-0000-0000-0000-000000000001", userID)
}

func TestGenerateTokenWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := GenerateToken("user-1")
	assert.Error(t, err)
}

func TestGetUserIDFromTokenMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	req := httptest.NewRequest("GET", "/", nil)
	_, err := GetUserIDFromToken(req)
	assert.Error(t, err)
}

func TestGetUserIDFromTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	token, err := GenerateToken("user-1")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET_KEY", "another-secret")
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err = GetUserIDFromToken(req)
	assert.Error(t, err)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestAuthMiddlewarePassesValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	token, err := GenerateToken("user-1")
	require.NoError(t, err)

	called := false
	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "user-1", r.Context().Value("user_id"))
	}))

	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}
