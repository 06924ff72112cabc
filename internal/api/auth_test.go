package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func mintToken(t *testing.T, secret []byte, subject, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func authProbe(t *testing.T) (http.Handler, *Principal) {
	t.Helper()
	var seen Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		seen = p
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(testSecret)(inner), &seen
}

func TestAuthValidToken(t *testing.T) {
	handler, seen := authProbe(t)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, userID.String(), RolePatient, time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, seen.ID)
	assert.Equal(t, RolePatient, seen.Role)
}

func TestAuthMissingToken(t *testing.T) {
	handler, _ := authProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthWrongSecret(t *testing.T) {
	handler, _ := authProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, []byte("other-secret"), uuid.NewString(), RolePatient, time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	handler, _ := authProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, uuid.NewString(), RolePatient, -time.Minute))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsNonUUIDSubject(t *testing.T) {
	handler, _ := authProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, "not-a-uuid", RolePatient, time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsUnknownRole(t *testing.T) {
	handler, _ := authProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, uuid.NewString(), "admin", time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Auth(testSecret)(RequireRole(RoleDoctor)(inner))

	t.Run("matching role passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/doctors/me/schedule", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, uuid.NewString(), RoleDoctor, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/doctors/me/schedule", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, testSecret, uuid.NewString(), RolePatient, time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no session is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/doctors/me/schedule", nil)
		rec := httptest.NewRecorder()
		RequireRole(RoleDoctor)(inner).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
