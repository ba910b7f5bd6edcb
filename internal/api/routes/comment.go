package routes

import (
	"github.com/go-chi/chi/v5"

	"Inkwell/internal/api/handlers/comments"
	"Inkwell/internal/api/middleware"
	commentsCore "Inkwell/internal/core/comments"
)

// RegisterCommentRoutes registers the comment endpoints nested under a post.
// All write operations (create, update, delete) require authentication.
func RegisterCommentRoutes(r chi.Router, service commentsCore.Service, authMiddleware middleware.AuthMiddleware) {
	getHandler := comments.NewGetCommentsHandler(service)
	createHandler := comments.NewCreateCommentHandler(service)
	updateHandler := comments.NewUpdateCommentHandler(service)
	deleteHandler := comments.NewDeleteCommentHandler(service)

	r.Get("/api/posts/{id}/comments", getHandler.HandleGetComments)

	r.With(authMiddleware.RequireAuth).Post("/api/posts/{id}/comments", createHandler.HandleCreate)
	r.With(authMiddleware.RequireAuth).Patch("/api/posts/{id}/comments/{commentId}", updateHandler.HandleUpdate)
	r.With(authMiddleware.RequireAuth).Delete("/api/posts/{id}/comments/{commentId}", deleteHandler.HandleDelete)
}
