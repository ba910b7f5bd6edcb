package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"Inkwell/internal/core/session"
	"Inkwell/internal/core/users"
)

// Context keys for storing user information
type contextKey string

const (
	UserKey         contextKey = "auth_user"
	UserAccessToken contextKey = "user_access_token"
)

// Authenticator resolves a bearer token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*users.User, error)
}

// AuthMiddleware is implemented by middlewares that can guard routes
type AuthMiddleware interface {
	RequireAuth(next http.Handler) http.Handler
	OptionalAuth(next http.Handler) http.Handler
}

// SessionAuthMiddleware authenticates requests with a Bearer token from the Authorization
// header, falling back to the token held in the session cookie
type SessionAuthMiddleware struct {
	auth    Authenticator
	cookies *session.CookieStore
}

// NewSessionAuthMiddleware creates the middleware. cookies may be nil to accept only headers.
func NewSessionAuthMiddleware(auth Authenticator, cookies *session.CookieStore) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		auth:    auth,
		cookies: cookies,
	}
}

// RequireAuth ensures the request carries a valid token.
// If not authenticated, returns 401. Otherwise injects the user and token into the context.
func (m *SessionAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.extractToken(w, r)
		if !ok {
			writeAuthError(w, "Missing Authorization header or session")
			return
		}

		user, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			log.Printf("[AUTH_FAILURE] type=verification_failed ip=%s method=%s path=%s error=%v",
				getClientIP(r), r.Method, r.URL.Path, err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user, token)))
	})
}

// OptionalAuth loads the user if authenticated, but doesn't require it
func (m *SessionAuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.extractToken(w, r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			log.Printf("Optional auth failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user, token)))
	})
}

// extractToken prefers the Authorization header. A malformed header is rejected outright
// rather than falling back to the cookie.
func (m *SessionAuthMiddleware) extractToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		return token, token != ""
	}

	if m.cookies == nil {
		return "", false
	}
	sess := session.New(m.cookies.For(w, r), nil)
	if err := sess.Load(); err != nil {
		log.Printf("Failed to load session cookie: %v", err)
		return "", false
	}
	token := sess.CurrentToken()
	return token, token != ""
}

func withUser(ctx context.Context, user *users.User, token string) context.Context {
	ctx = context.WithValue(ctx, UserKey, user)
	return context.WithValue(ctx, UserAccessToken, token)
}

// GetUser extracts the authenticated user from the request context.
// Returns nil if not authenticated.
func GetUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(UserKey).(*users.User)
	return user
}

// GetUserID returns the authenticated user's ID, or "" if not authenticated
func GetUserID(r *http.Request) string {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return ""
}

// GetUserAccessToken extracts the user's access token from the request context
// Returns empty string if not authenticated
func GetUserAccessToken(r *http.Request) string {
	token, _ := r.Context().Value(UserAccessToken).(string)
	return token
}

// SetTestUser sets the user in the context for testing purposes
// This function should ONLY be used in tests to mock authenticated users
func SetTestUser(ctx context.Context, user *users.User) context.Context {
	return withUser(ctx, user, "test-token")
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "AuthenticationRequired",
		"message": message,
	}); err != nil {
		log.Printf("Failed to write auth error response: %v", err)
	}
}
