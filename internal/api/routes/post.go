package routes

import (
	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/handlers/post"
	"Inkwell/internal/api/middleware"
	"Inkwell/internal/core/posts"
)

// RegisterPostRoutes registers the post endpoints.
// Reads are public; writes and reactions require authentication.
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware middleware.AuthMiddleware) {
	createHandler := post.NewCreateHandler(service)
	getHandler := post.NewGetHandler(service)
	updateHandler := post.NewUpdateHandler(service)
	deleteHandler := post.NewDeleteHandler(service)
	reactionHandler := post.NewReactionHandler(service)

	r.Get("/api/posts", getHandler.HandleList)
	r.Get("/api/posts/search", getHandler.HandleSearch)
	r.Get("/api/posts/{id}", getHandler.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/api/posts", createHandler.HandleCreate)
		r.Patch("/api/posts/{id}", updateHandler.HandleUpdate)
		r.Delete("/api/posts/{id}", deleteHandler.HandleDelete)

		r.Post("/api/posts/{id}/like", reactionHandler.HandleLike)
		r.Post("/api/posts/{id}/unlike", reactionHandler.HandleUnlike)
		r.Post("/api/posts/{id}/dislike", reactionHandler.HandleDislike)
		r.Post("/api/posts/{id}/undislike", reactionHandler.HandleUndislike)
	})
}
