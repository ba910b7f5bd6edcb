package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"Inkwell/internal/core/cachekeys"
	"Inkwell/internal/core/docstore"
	"Inkwell/internal/core/querycache"
)

const listStaleTime = 30 * time.Second

type commentService struct {
	store  docstore.Store
	cache  *querycache.Cache
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewCommentService creates a comment service over the posts collection.
// cache may be nil, in which case every read goes to the store.
func NewCommentService(store docstore.Store, cache *querycache.Cache, logger *slog.Logger) Service {
	return NewCommentServiceWithClock(store, cache, logger, nil, nil)
}

// NewCommentServiceWithClock creates a comment service with an injected clock and id generator.
// nil now and newID fall back to the UTC wall clock and random UUIDs.
func NewCommentServiceWithClock(store docstore.Store, cache *querycache.Cache, logger *slog.Logger, now func() time.Time, newID func() string) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &commentService{
		store:  store,
		cache:  cache,
		now:    now,
		newID:  newID,
		logger: logger,
	}
}

func (s *commentService) AddComment(ctx context.Context, postID string, input NewComment) (string, error) {
	if err := validatePostID(postID); err != nil {
		return "", err
	}
	if err := validateNewComment(input); err != nil {
		return "", err
	}

	comment := Comment{
		ID:        s.newID(),
		Text:      input.Text,
		UserID:    input.UserID,
		UserName:  strings.TrimSpace(input.UserName),
		UserImage: input.UserImage,
		CreatedAt: s.now(),
	}

	err := s.mutate(ctx, postID, "add", func(existing []Comment) ([]Comment, bool) {
		return append(existing, comment), true
	})
	if err != nil {
		return "", err
	}

	cachekeys.Apply(s.cache, cachekeys.OpAddComment, postID)
	s.logger.Info("comment added", "post_id", postID, "comment_id", comment.ID)
	return comment.ID, nil
}

func (s *commentService) UpdateComment(ctx context.Context, postID, commentID, text string) error {
	if err := validatePostID(postID); err != nil {
		return err
	}
	if strings.TrimSpace(commentID) == "" {
		return NewValidationError("commentId", "comment id is required")
	}
	if err := validateText(text); err != nil {
		return err
	}

	err := s.mutate(ctx, postID, "update", func(existing []Comment) ([]Comment, bool) {
		for i := range existing {
			if existing[i].ID == commentID {
				existing[i].Text = text
				return existing, true
			}
		}
		return existing, false
	})
	if err != nil {
		return err
	}

	cachekeys.Apply(s.cache, cachekeys.OpUpdateComment, postID)
	return nil
}

func (s *commentService) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := validatePostID(postID); err != nil {
		return err
	}
	if strings.TrimSpace(commentID) == "" {
		return NewValidationError("commentId", "comment id is required")
	}

	err := s.mutate(ctx, postID, "delete", func(existing []Comment) ([]Comment, bool) {
		for i := range existing {
			if existing[i].ID == commentID {
				return append(existing[:i], existing[i+1:]...), true
			}
		}
		return existing, false
	})
	if err != nil {
		return err
	}

	cachekeys.Apply(s.cache, cachekeys.OpDeleteComment, postID)
	return nil
}

func (s *commentService) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if err := validatePostID(postID); err != nil {
		return nil, err
	}

	cached, err := querycache.Fetch(ctx, s.cache, cachekeys.Comments(postID), listStaleTime, func(ctx context.Context) ([]Comment, error) {
		return s.load(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return append([]Comment(nil), cached...), nil
}

func (s *commentService) GetComment(ctx context.Context, postID, commentID string) (*Comment, error) {
	list, err := s.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == commentID {
			c := list[i]
			return &c, nil
		}
	}
	return nil, ErrCommentNotFound
}

// load reads the comment sequence and orders it oldest first
func (s *commentService) load(ctx context.Context, postID string) ([]Comment, error) {
	doc, err := s.store.Get(ctx, docstore.CollectionPosts, postID)
	if err != nil {
		return nil, s.storeError("list", postID, err)
	}

	list, err := decodeComments(doc.Fields[FieldComments])
	if err != nil {
		return nil, fmt.Errorf("post %s has malformed comments: %w", postID, err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// mutate applies edit to the post's comment sequence atomically. When edit reports no change
// the document is left untouched.
func (s *commentService) mutate(ctx context.Context, postID, op string, edit func([]Comment) ([]Comment, bool)) error {
	err := s.store.Mutate(ctx, docstore.CollectionPosts, postID, func(fields map[string]any) (map[string]any, error) {
		existing, err := decodeComments(fields[FieldComments])
		if err != nil {
			return nil, fmt.Errorf("post %s has malformed comments: %w", postID, err)
		}

		updated, changed := edit(existing)
		if !changed {
			return nil, nil
		}

		value, err := docstore.ToValue(updated)
		if err != nil {
			return nil, err
		}
		return map[string]any{FieldComments: value}, nil
	})
	if err != nil {
		return s.storeError(op, postID, err)
	}
	return nil
}

func (s *commentService) storeError(op, postID string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrPostNotFound
	}
	if docstore.IsTransport(err) {
		s.logger.Error("comment store call failed", "op", op, "post_id", postID, "error", err)
	}
	return fmt.Errorf("failed to %s comment on post %s: %w", op, postID, err)
}

func decodeComments(v any) ([]Comment, error) {
	list := []Comment{}
	if err := docstore.FromValue(v, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Comment{}
	}
	return list, nil
}
