package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"Inkwell/internal/core/docstore"
)

type userRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

// NewUserRepository creates a user repository over the users collection of store
func NewUserRepository(store docstore.Store, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{store: store, logger: logger}
}

// Create inserts a new user. The email must be unique.
func (r *userRepository) Create(ctx context.Context, user *User) (*User, error) {
	existing, err := r.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	fields := map[string]any{
		fieldName:         user.Name,
		fieldEmail:        user.Email,
		fieldPasswordHash: user.PasswordHash,
		fieldCreatedAt:    docstore.ServerTimestamp,
	}
	if user.ImageURL != nil {
		fields[fieldImageURL] = *user.ImageURL
	}

	id, err := r.store.Create(ctx, docstore.CollectionUsers, fields)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, r.wrap("create", err)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*User, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUsers, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, r.wrap("get", err)
	}
	return decodeUser(doc)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := docstore.Query{Limit: 1}.Where(fieldEmail, docstore.OpEqual, strings.ToLower(email))
	docs, err := r.store.List(ctx, docstore.CollectionUsers, q)
	if err != nil {
		return nil, r.wrap("find by email", err)
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}
	return decodeUser(docs[0])
}

func (r *userRepository) wrap(op string, err error) error {
	if docstore.IsTransport(err) {
		r.logger.Error("user store call failed", "op", op, "error", err)
	}
	return fmt.Errorf("failed to %s user: %w", op, err)
}

func decodeUser(doc *docstore.Document) (*User, error) {
	var rec userRecord
	if err := doc.Decode(&rec); err != nil {
		return nil, err
	}
	return rec.toUser(), nil
}
