package comments

import "context"

// Service manages the comment sequence embedded in a post
type Service interface {
	// AddComment appends a comment with a fresh identifier and returns that identifier
	AddComment(ctx context.Context, postID string, input NewComment) (string, error)

	// UpdateComment replaces the text of the matching comment.
	// An unknown commentID leaves the sequence unchanged and is not an error.
	UpdateComment(ctx context.Context, postID, commentID, text string) error

	// DeleteComment removes the first comment matching commentID. Unknown ids are a no-op.
	DeleteComment(ctx context.Context, postID, commentID string) error

	// ListComments returns the comments ordered by creation time, oldest first
	ListComments(ctx context.Context, postID string) ([]Comment, error)

	// GetComment returns a single comment or ErrCommentNotFound
	GetComment(ctx context.Context, postID, commentID string) (*Comment, error)
}
