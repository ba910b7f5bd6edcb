package routes

import (
	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/handlers/user"
	"Inkwell/internal/api/middleware"
	"Inkwell/internal/core/session"
	"Inkwell/internal/core/users"
)

// RegisterAuthRoutes registers sign-up, sign-in, sign-out and the current-user endpoint
func RegisterAuthRoutes(r chi.Router, service users.UserService, cookies *session.CookieStore, authMiddleware middleware.AuthMiddleware) {
	h := user.NewAuthHandler(service, cookies)

	r.Post("/api/auth/signup", h.HandleSignUp)
	r.Post("/api/auth/signin", h.HandleSignIn)
	r.Post("/api/auth/signout", h.HandleSignOut)
	r.With(authMiddleware.RequireAuth).Get("/api/auth/me", h.HandleMe)
}
