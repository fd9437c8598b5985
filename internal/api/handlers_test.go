package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careercast/pkg/auth"
	"careercast/pkg/logger"
)

func TestOrderedKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		keys []string
	}{
		{"flat object", `{"b": 1, "a": 2, "c": 3}`, []string{"b", "a", "c"}},
		{"wire order kept", `{"Zeta": 1, "alpha": "x", "Mid": true}`, []string{"Zeta", "alpha", "Mid"}},
		{"nested values skipped", `{"a": {"inner": [1, 2]}, "b": [{"x": 1}], "c": null}`, []string{"a", "b", "c"}},
		{"empty object", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := orderedKeys([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.keys, keys)
		})
	}
}

func TestOrderedKeys_NotAnObject(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `"text"`, `42`} {
		_, err := orderedKeys([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestBearerToken(t *testing.T) {
	newReq := func(header string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return r
	}

	assert.Equal(t, "abc", bearerToken(newReq("Bearer abc")))
	assert.Equal(t, "abc", bearerToken(newReq("bearer abc")))
	assert.Equal(t, "", bearerToken(newReq("")))
	assert.Equal(t, "", bearerToken(newReq("Basic abc")))
	assert.Equal(t, "", bearerToken(newReq("Bearer")))
}

func testJWT() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-at-least-32-chars!", "test", time.Hour)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	jwtService := testJWT()
	handler := requireAuth(jwtService, okHandler())

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := jwtService.GenerateToken("1", "alice", "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	jwtService := testJWT()
	handler := requireAdmin(jwtService, okHandler())

	t.Run("regular user forbidden", func(t *testing.T) {
		token, err := jwtService.GenerateToken("1", "alice", "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin allowed, case-insensitive", func(t *testing.T) {
		token, err := jwtService.GenerateToken("2", "Admin", "admin@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	jwtService := testJWT()

	var seen *auth.Claims
	handler := optionalAuth(jwtService, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = claimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous passes through", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("invalid token still passes through", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		seen = nil
		token, err := jwtService.GenerateToken("7", "alice", "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "7", seen.UserID)
	})
}

func TestHandlePredict_RejectsNonObjectBody(t *testing.T) {
	h := &Handlers{log: logger.Get()}

	for _, body := range []string{`[1,2]`, `"x"`, `not json`, `null`} {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.HandlePredict(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
