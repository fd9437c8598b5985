package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"careercast/internal/metrics"
	"careercast/pkg/auth"
	"careercast/pkg/logger"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// claimsFromContext returns the token claims attached by the auth middleware,
// or nil for anonymous requests.
func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// optionalAuth attaches claims when a valid bearer token is present. Missing
// or invalid tokens leave the request anonymous instead of rejecting it.
func optionalAuth(jwtService *auth.JWTService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := jwtService.ValidateToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a valid bearer token.
func requireAuth(jwtService *auth.JWTService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	})
}

// requireAdmin rejects non-admin accounts. Admin is the account whose
// username equals "admin", compared case-insensitively.
func requireAdmin(jwtService *auth.JWTService, next http.Handler) http.Handler {
	return requireAuth(jwtService, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil || !strings.EqualFold(claims.Username, "admin") {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogging assigns a request ID, logs each request, and records HTTP
// metrics. The /metrics endpoint itself is not instrumented.
func requestLogging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(start)

		metrics.RecordHTTPRequest(r.Method, r.URL.Path, http.StatusText(recorder.status), duration)
		log.Debugw("HTTP request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", duration,
		)
	})
}
