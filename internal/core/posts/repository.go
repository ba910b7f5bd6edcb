package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Inkwell/internal/core/comments"
	"Inkwell/internal/core/docstore"
)

type storeRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

// NewRepository creates a post repository over the posts collection of store
func NewRepository(store docstore.Store, logger *slog.Logger) Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &storeRepository{
		store:  store,
		logger: logger,
	}
}

func (r *storeRepository) Create(ctx context.Context, input CreatePostInput) (string, error) {
	fields := map[string]any{
		FieldTitle:      input.Title,
		FieldTitleLower: strings.ToLower(input.Title),
		FieldContent:    input.Content,
		FieldImage:      input.Image,
		FieldAuthorID:   input.AuthorID,
		FieldAuthorName: input.AuthorName,
		FieldLikes:      int64(0),
		FieldDislikes:   int64(0),
		FieldComments:   []any{},
		FieldCreatedAt:  docstore.ServerTimestamp,
		FieldUpdatedAt:  docstore.ServerTimestamp,
	}
	if input.AuthorImage != nil {
		fields[FieldAuthorImage] = *input.AuthorImage
	}

	id, err := r.store.Create(ctx, docstore.CollectionPosts, fields)
	if err != nil {
		return "", r.wrap("create", "", err)
	}
	return id, nil
}

func (r *storeRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionPosts, id)
	if err != nil {
		return nil, r.wrap("get", id, err)
	}
	return decodePost(doc)
}

func (r *storeRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	patch := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		patch[k] = v
	}
	if title, ok := fields[FieldTitle].(string); ok {
		patch[FieldTitleLower] = strings.ToLower(title)
	}
	patch[FieldUpdatedAt] = docstore.ServerTimestamp

	if err := r.store.Update(ctx, docstore.CollectionPosts, id, patch); err != nil {
		return r.wrap("update", id, err)
	}
	return nil
}

func (r *storeRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.CollectionPosts, id); err != nil {
		return r.wrap("delete", id, err)
	}
	return nil
}

func (r *storeRepository) List(ctx context.Context, limit, offset int) ([]*Post, error) {
	q := docstore.Query{Limit: limit, Offset: offset}.Sort(FieldCreatedAt, true)
	docs, err := r.store.List(ctx, docstore.CollectionPosts, q)
	if err != nil {
		return nil, r.wrap("list", "", err)
	}
	return decodePosts(docs)
}

func (r *storeRepository) SearchByTitlePrefix(ctx context.Context, prefix string) ([]*Post, error) {
	q := docstore.Query{Filters: docstore.PrefixRange(FieldTitleLower, prefix)}.Sort(FieldTitleLower, false)
	docs, err := r.store.List(ctx, docstore.CollectionPosts, q)
	if err != nil {
		return nil, r.wrap("search", "", err)
	}
	return decodePosts(docs)
}

func (r *storeRepository) AdjustCounter(ctx context.Context, id string, counter Counter, delta int64) error {
	if err := r.store.Increment(ctx, docstore.CollectionPosts, id, string(counter), delta); err != nil {
		return r.wrap("adjust "+string(counter), id, err)
	}
	return nil
}

// wrap converts a store failure into a domain error and logs transport failures
func (r *storeRepository) wrap(op, id string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return NewNotFoundError("post", id)
	}
	if docstore.IsTransport(err) {
		r.logger.Error("post store call failed", "op", op, "post_id", id, "error", err)
	}
	if id == "" {
		return fmt.Errorf("failed to %s posts: %w", op, err)
	}
	return fmt.Errorf("failed to %s post %s: %w", op, id, err)
}

func decodePost(doc *docstore.Document) (*Post, error) {
	var p Post
	if err := doc.Decode(&p); err != nil {
		return nil, err
	}
	if p.Comments == nil {
		p.Comments = []comments.Comment{}
	}
	return &p, nil
}

func decodePosts(docs []*docstore.Document) ([]*Post, error) {
	out := make([]*Post, 0, len(docs))
	for _, doc := range docs {
		p, err := decodePost(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
