package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/hrms/internal/security/auth"
	"github.com/yourorg/hrms/internal/security/ratelimit"
)

type ClaimsContextKey struct{}
type TokenContextKey struct{}

// RevocationChecker is implemented by the optional Redis denylist. A nil
// checker disables server-side revocation.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// publicPath reports whether a route is reachable without a bearer token.
func publicPath(path string) bool {
	switch path {
	case "/health", "/readyz", "/metrics", "/api/auth/register", "/api/auth/login":
		return true
	}
	return false
}

// JWTMiddleware gates every non-public route: missing/malformed headers,
// bad signatures, expired and revoked tokens are all 401. On success the
// decoded claims and the raw token are attached to the request context.
func JWTMiddleware(tm *auth.TokenManager, revoked RevocationChecker, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Browser preflights never carry an Authorization header.
			if r.Method == http.MethodOptions || publicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "authorization header required")
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				unauthorized(w, "invalid authorization header")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), tokenString)
				if err != nil {
					log.Warn("revocation check failed, rejecting token",
						slog.String("error", err.Error()),
					)
					unauthorized(w, "invalid or expired token")
					return
				}
				if isRevoked {
					unauthorized(w, "token has been revoked")
					return
				}
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, TokenContextKey{}, tokenString)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware throttles register/login per remote IP and every
// authenticated route per organization.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/auth/register", "/api/auth/login":
				if !limiter.AllowStrict(ClientIP(r), 10, time.Minute) {
					tooManyRequests(w)
					return
				}
			default:
				if claims := GetClaimsFromContext(r.Context()); claims != nil {
					if !limiter.Allow(strconv.FormatInt(claims.OrganizationID, 10)) {
						log.Warn("rate limit exceeded",
							slog.Int64("organization_id", claims.OrganizationID),
							slog.String("path", r.URL.Path),
						)
						tooManyRequests(w)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext returns the authenticated identity, or nil on
// public routes.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

// GetTokenFromContext returns the raw bearer token for the request.
func GetTokenFromContext(ctx context.Context) string {
	if t := ctx.Value(TokenContextKey{}); t != nil {
		return t.(string)
	}
	return ""
}

// ClientIP extracts the caller's address, preferring the first
// X-Forwarded-For hop when a proxy set it.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"message":"` + msg + `"}`))
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"message":"rate limit exceeded"}`))
}
