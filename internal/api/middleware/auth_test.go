package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/PetCare-BookingService/internal/domain"
)

func TestAuthExtractsUserContext(t *testing.T) {
	var gotUserID int64
	var gotRole domain.ActorRole

	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		require.True(t, ok)
		gotUserID = userID

		role, ok := GetUserRole(r.Context())
		require.True(t, ok)
		gotRole = role

		w.WriteHeader(http.StatusOK)
	}))

	t.Run("owner by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("X-User-ID", "42")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), gotUserID)
		assert.Equal(t, domain.ActorOwner, gotRole)
	})

	t.Run("explicit admin role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set("X-User-ID", "7")
		req.Header.Set("X-User-Role", "admin")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.ActorAdmin, gotRole)
	})
}

func TestAuthRejectsInvalidHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})
	handler := Auth(next)

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "missing user id", headers: map[string]string{}},
		{name: "non-numeric user id", headers: map[string]string{"X-User-ID": "abc"}},
		{name: "non-positive user id", headers: map[string]string{"X-User-ID": "0"}},
		{name: "unknown role", headers: map[string]string{"X-User-ID": "42", "X-User-Role": "manager"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
