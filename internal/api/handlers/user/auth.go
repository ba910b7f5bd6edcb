// Package user provides HTTP handlers for sign-up, sign-in and the current session.
package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"Inkwell/internal/api/middleware"
	"Inkwell/internal/core/session"
	"Inkwell/internal/core/users"
)

const maxAuthBodyBytes = 64 * 1024

// AuthHandler handles account sign-up, sign-in, sign-out and session lookups
type AuthHandler struct {
	userService users.UserService
	cookies     *session.CookieStore
}

// NewAuthHandler creates a new auth handler. cookies may be nil to skip the session cookie.
func NewAuthHandler(userService users.UserService, cookies *session.CookieStore) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		cookies:     cookies,
	}
}

// HandleSignUp handles POST /api/auth/signup
//
// Request body: { "username": "...", "email": "...", "password": "...", "imageUrl": "..." }
// Response: { "user": {...}, "token": "..." }
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)

	var req users.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	result, err := h.userService.SignUp(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, "signup")
		return
	}

	h.saveSession(w, r, result)
	writeJSON(w, http.StatusCreated, result)
}

// HandleSignIn handles POST /api/auth/signin
//
// Request body: { "email": "...", "password": "..." }
// Response: { "user": {...}, "token": "..." }
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)

	var req users.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	result, err := h.userService.SignIn(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, "signin")
		return
	}

	h.saveSession(w, r, result)
	writeJSON(w, http.StatusOK, result)
}

// HandleSignOut handles POST /api/auth/signout.
// The session is cleared and the response is 200 even if the cookie could not be rewritten.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if h.cookies != nil {
		if err := session.New(h.cookies.For(w, r), nil).Clear(); err != nil {
			slog.Warn("failed to clear session cookie", slog.String("error", err.Error()))
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleMe handles GET /api/auth/me (requires auth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeJSONError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// saveSession stores the result in the session cookie. A cookie failure is logged; the
// token in the response body still works as a bearer token.
func (h *AuthHandler) saveSession(w http.ResponseWriter, r *http.Request, result *users.AuthResult) {
	if h.cookies == nil {
		return
	}
	if err := session.New(h.cookies.For(w, r), nil).Save(result.User, result.Token); err != nil {
		slog.Warn("failed to save session cookie",
			slog.String("user_id", result.User.ID),
			slog.String("error", err.Error()),
		)
	}
}
