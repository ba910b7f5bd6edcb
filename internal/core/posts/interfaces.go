package posts

import "context"

// Service defines the business logic interface for posts.
// Every successful write invalidates the query-cache keys listed in cachekeys.
type Service interface {
	// CreatePost validates the input and stores a new post with zeroed counters,
	// no comments, and server-assigned timestamps. Returns the new post ID.
	CreatePost(ctx context.Context, input CreatePostInput) (string, error)

	// UpdatePost overwrites the given fields and refreshes updatedAt
	UpdatePost(ctx context.Context, id string, input UpdatePostInput) error

	// UpdatePostFields is UpdatePost for an untyped field map.
	// id, createdAt and unknown fields are rejected with a ValidationError.
	UpdatePostFields(ctx context.Context, id string, fields map[string]any) error

	// DeletePost removes the post permanently
	DeletePost(ctx context.Context, id string) error

	// GetPost returns the post, or found=false when it does not exist
	GetPost(ctx context.Context, id string) (post *Post, found bool, err error)

	// ListPosts returns every post, newest first
	ListPosts(ctx context.Context) ([]*Post, error)

	// ListPostsPage returns up to limit posts, newest first, starting at cursor
	ListPostsPage(ctx context.Context, limit int, cursor string) (*PostPage, error)

	// SearchPostsByTitle returns posts whose lowercased title starts with the lowercased term.
	// A blank term returns an empty slice without touching the store.
	SearchPostsByTitle(ctx context.Context, term string) ([]*Post, error)

	LikePost(ctx context.Context, id string) error
	UnlikePost(ctx context.Context, id string) error
	DislikePost(ctx context.Context, id string) error
	UndislikePost(ctx context.Context, id string) error
}

// Repository defines the data access interface for posts
type Repository interface {
	// Create stores a new post and returns the store-assigned ID
	Create(ctx context.Context, input CreatePostInput) (string, error)

	// GetByID returns the post or a NotFoundError
	GetByID(ctx context.Context, id string) (*Post, error)

	// Update overwrites fields and refreshes updatedAt. titleLower follows title.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes the post
	Delete(ctx context.Context, id string) error

	// List returns posts ordered by createdAt descending. limit 0 means all.
	List(ctx context.Context, limit, offset int) ([]*Post, error)

	// SearchByTitlePrefix returns posts whose titleLower starts with prefix
	SearchByTitlePrefix(ctx context.Context, prefix string) ([]*Post, error)

	// AdjustCounter atomically adds delta to a reaction counter
	AdjustCounter(ctx context.Context, id string, counter Counter, delta int64) error
}
