package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/member-sync/internal/auth"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
)

// SessionChecker reports sessions ended by sign-out.
type SessionChecker interface {
	IsRevoked(ctx context.Context, claims *auth.Claims) (bool, error)
}

// Auth rejects requests without a live session. sessions may be nil.
func Auth(jwtService *auth.JWTService, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveSession(r, jwtService, sessions)
			if !ok {
				handleUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches the session when one is present and valid, and lets
// anonymous requests through unchanged.
func OptionalAuth(jwtService *auth.JWTService, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolveSession(r, jwtService, sessions); ok {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest finds the session token on a request.
func TokenFromRequest(r *http.Request) string {
	// 1. Check Authorization header (API requests)
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// 2. Check cookie (web pages)
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// 3. Check X-Auth-Token header
	return r.Header.Get("X-Auth-Token")
}

func resolveSession(r *http.Request, jwtService *auth.JWTService, sessions SessionChecker) (*auth.Claims, bool) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, false
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return nil, false
	}

	if sessions != nil {
		revoked, err := sessions.IsRevoked(r.Context(), claims)
		if err != nil || revoked {
			return nil, false
		}
	}
	return claims, true
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	return ctx
}

// handleUnauthorized returns appropriate response based on request type
func handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	isWebRequest := strings.Contains(accept, "text/html") && !strings.HasPrefix(r.URL.Path, "/api/")

	if isWebRequest {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}
