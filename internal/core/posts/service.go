package posts

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"Inkwell/internal/core/cachekeys"
	"Inkwell/internal/core/querycache"
)

const (
	listStaleTime   = 30 * time.Second
	searchStaleTime = 2 * time.Minute

	// DefaultPageSize is used when ListPostsPage is called with a non-positive limit
	DefaultPageSize = 20
	// MaxPageSize bounds ListPostsPage
	MaxPageSize = 100
)

type postService struct {
	repo   Repository
	cache  *querycache.Cache
	logger *slog.Logger
}

// NewPostService creates a post service. cache may be nil, in which case reads are not cached.
func NewPostService(repo Repository, cache *querycache.Cache, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *postService) CreatePost(ctx context.Context, input CreatePostInput) (string, error) {
	if err := validateCreate(input); err != nil {
		return "", err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.AuthorName = strings.TrimSpace(input.AuthorName)

	id, err := s.repo.Create(ctx, input)
	if err != nil {
		return "", err
	}

	cachekeys.Apply(s.cache, cachekeys.OpCreatePost, id)
	s.logger.Info("post created", "post_id", id, "author_id", input.AuthorID)
	return id, nil
}

func (s *postService) UpdatePost(ctx context.Context, id string, input UpdatePostInput) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError(FieldID, "post id is required")
	}
	if err := validateUpdate(input); err != nil {
		return err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}

	if err := s.repo.Update(ctx, id, input.fields()); err != nil {
		return err
	}

	cachekeys.Apply(s.cache, cachekeys.OpUpdatePost, id)
	return nil
}

func (s *postService) UpdatePostFields(ctx context.Context, id string, fields map[string]any) error {
	input, err := inputFromFields(fields)
	if err != nil {
		return err
	}
	return s.UpdatePost(ctx, id, input)
}

func (s *postService) DeletePost(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError(FieldID, "post id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	cachekeys.Apply(s.cache, cachekeys.OpDeletePost, id)
	s.logger.Info("post deleted", "post_id", id)
	return nil
}

func (s *postService) GetPost(ctx context.Context, id string) (*Post, bool, error) {
	if strings.TrimSpace(id) == "" {
		return nil, false, nil
	}

	post, err := querycache.Fetch(ctx, s.cache, cachekeys.Post(id), listStaleTime, func(ctx context.Context) (*Post, error) {
		p, err := s.repo.GetByID(ctx, id)
		if IsNotFound(err) {
			return nil, nil
		}
		return p, err
	})
	if err != nil {
		return nil, false, err
	}
	if post == nil {
		return nil, false, nil
	}
	return post.clone(), true, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]*Post, error) {
	list, err := querycache.Fetch(ctx, s.cache, cachekeys.Posts(), listStaleTime, func(ctx context.Context) ([]*Post, error) {
		return s.repo.List(ctx, 0, 0)
	})
	if err != nil {
		return nil, err
	}
	return clonePosts(list), nil
}

func (s *postService) ListPostsPage(ctx context.Context, limit int, cursor string) (*PostPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	key := append(cachekeys.Posts(), "page", strconv.Itoa(limit), strconv.Itoa(offset))
	page, err := querycache.Fetch(ctx, s.cache, key, listStaleTime, func(ctx context.Context) (*PostPage, error) {
		// one extra row tells whether another page exists
		list, err := s.repo.List(ctx, limit+1, offset)
		if err != nil {
			return nil, err
		}
		page := &PostPage{Posts: list}
		if len(list) > limit {
			page.Posts = list[:limit]
			next := encodeCursor(offset + limit)
			page.Cursor = &next
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: clonePosts(page.Posts), Cursor: page.Cursor}, nil
}

func (s *postService) SearchPostsByTitle(ctx context.Context, term string) ([]*Post, error) {
	prefix := strings.ToLower(strings.TrimSpace(term))
	if prefix == "" {
		return []*Post{}, nil
	}

	list, err := querycache.Fetch(ctx, s.cache, cachekeys.Search(prefix), searchStaleTime, func(ctx context.Context) ([]*Post, error) {
		return s.repo.SearchByTitlePrefix(ctx, prefix)
	})
	if err != nil {
		return nil, err
	}
	return clonePosts(list), nil
}

func (s *postService) LikePost(ctx context.Context, id string) error {
	return s.adjust(ctx, id, CounterLikes, 1, cachekeys.OpLikePost)
}

func (s *postService) UnlikePost(ctx context.Context, id string) error {
	return s.adjust(ctx, id, CounterLikes, -1, cachekeys.OpUnlikePost)
}

func (s *postService) DislikePost(ctx context.Context, id string) error {
	return s.adjust(ctx, id, CounterDislikes, 1, cachekeys.OpDislikePost)
}

func (s *postService) UndislikePost(ctx context.Context, id string) error {
	return s.adjust(ctx, id, CounterDislikes, -1, cachekeys.OpUndislikePost)
}

// adjust applies a counter delta at the store. Counters have no floor.
func (s *postService) adjust(ctx context.Context, id string, counter Counter, delta int64, op cachekeys.Operation) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError(FieldID, "post id is required")
	}
	if err := s.repo.AdjustCounter(ctx, id, counter, delta); err != nil {
		return err
	}

	cachekeys.Apply(s.cache, op, id)
	return nil
}

func clonePosts(list []*Post) []*Post {
	out := make([]*Post, len(list))
	for i, p := range list {
		out[i] = p.clone()
	}
	return out
}

func encodeCursor(offset int) string {
	return base64.URLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, ErrInvalidCursor
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, ErrInvalidCursor
	}
	return offset, nil
}
