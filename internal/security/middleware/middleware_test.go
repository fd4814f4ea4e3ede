package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/hrms/internal/security/auth"
	"github.com/yourorg/hrms/internal/security/ratelimit"
)

func passthrough(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddlewarePublicPaths(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "hrms-test", time.Hour)
	mw := JWTMiddleware(tm, nil, nil)

	for _, path := range []string{"/health", "/readyz", "/metrics", "/api/auth/register", "/api/auth/login"} {
		var hit bool
		r := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mw(passthrough(&hit)).ServeHTTP(rec, r)
		if !hit {
			t.Fatalf("expected %s to bypass auth, got %d", path, rec.Code)
		}
	}
}

func TestJWTMiddlewarePreflightPassesThrough(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "hrms-test", time.Hour)
	mw := JWTMiddleware(tm, nil, nil)

	var hit bool
	r := httptest.NewRequest(http.MethodOptions, "/api/employees", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	mw(passthrough(&hit)).ServeHTTP(rec, r)
	if !hit {
		t.Fatalf("expected preflight without Authorization to pass the gate, got %d", rec.Code)
	}
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "hrms-test", time.Hour)
	mw := JWTMiddleware(tm, nil, nil)

	var hit bool
	r := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	rec := httptest.NewRecorder()
	mw(passthrough(&hit)).ServeHTTP(rec, r)
	if hit || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (hit=%v)", rec.Code, hit)
	}
}

func TestJWTMiddlewareRejectsGarbageToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "hrms-test", time.Hour)
	mw := JWTMiddleware(tm, nil, nil)

	var hit bool
	r := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	r.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	mw(passthrough(&hit)).ServeHTTP(rec, r)
	if hit || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (hit=%v)", rec.Code, hit)
	}
}

func TestJWTMiddlewareAttachesClaims(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "hrms-test", time.Hour)
	token, err := tm.GenerateToken(7, 7, "admin@acme.test")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var claims *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = GetClaimsFromContext(r.Context())
		if got := GetTokenFromContext(r.Context()); got != token {
			t.Fatalf("expected raw token in context, got %q", got)
		}
	})

	r := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	JWTMiddleware(tm, nil, nil)(next).ServeHTTP(rec, r)

	if claims == nil || claims.OrganizationID != 7 {
		t.Fatalf("expected claims for organization 7, got %+v", claims)
	}
}

type fakeRevocations struct {
	revoked bool
	err     error
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	return f.revoked, f.err
}

func TestJWTMiddlewareRevokedToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "hrms-test", time.Hour)
	token, _ := tm.GenerateToken(7, 7, "admin@acme.test")

	var hit bool
	r := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	JWTMiddleware(tm, &fakeRevocations{revoked: true}, nil)(passthrough(&hit)).ServeHTTP(rec, r)
	if hit || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d (hit=%v)", rec.Code, hit)
	}
}

func TestJWTMiddlewareRevocationCheckFailureIsClosed(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "hrms-test", time.Hour)
	token, _ := tm.GenerateToken(7, 7, "admin@acme.test")

	var hit bool
	r := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	checker := &fakeRevocations{err: errors.New("redis down")}
	JWTMiddleware(tm, checker, nil)(passthrough(&hit)).ServeHTTP(rec, r)
	if hit || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected fail-closed rejection, got %d (hit=%v)", rec.Code, hit)
	}
}

func TestRateLimitMiddlewareStrictOnLogin(t *testing.T) {
	limiter := ratelimit.NewLimiter(1000, time.Minute)
	defer limiter.Stop()
	mw := RateLimitMiddleware(limiter, nil)

	var last int
	for i := 0; i < 11; i++ {
		var hit bool
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "203.0.113.9:4411"
		rec := httptest.NewRecorder()
		mw(passthrough(&hit)).ServeHTTP(rec, r)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on the eleventh login attempt, got %d", last)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:4411"
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Fatalf("expected remote addr host, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIP(r); got != "198.51.100.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}
}
