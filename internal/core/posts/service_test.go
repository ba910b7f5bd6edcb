package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/core/cachekeys"
	"Inkwell/internal/core/docstore"
	"Inkwell/internal/core/querycache"
)

type testEnv struct {
	store   *docstore.MemoryStore
	cache   *querycache.Cache
	service Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	tick := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	store := docstore.NewMemoryStore(docstore.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	cache, err := querycache.New(100)
	require.NoError(t, err)

	return &testEnv{
		store:   store,
		cache:   cache,
		service: NewPostService(NewRepository(store, nil), cache, nil),
	}
}

func validInput() CreatePostInput {
	return CreatePostInput{
		Title:      "Hello",
		Content:    "World",
		Image:      "img1",
		AuthorID:   "u1",
		AuthorName: "Alice",
	}
}

func createPost(t *testing.T, env *testEnv, title string) string {
	t.Helper()
	in := validInput()
	in.Title = title
	id, err := env.service.CreatePost(context.Background(), in)
	require.NoError(t, err)
	return id
}

func TestCreatePost_Scenario(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	id, err := env.service.CreatePost(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	post, found, err := env.service.GetPost(ctx, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "hello", post.TitleLower)
	assert.Equal(t, "World", post.Content)
	assert.Equal(t, "Alice", post.AuthorName)
	assert.Equal(t, int64(0), post.Likes)
	assert.Equal(t, int64(0), post.Dislikes)
	assert.NotNil(t, post.Comments)
	assert.Empty(t, post.Comments)
	require.NotNil(t, post.UpdatedAt)
	assert.True(t, post.CreatedAt.Equal(*post.UpdatedAt))
	assert.False(t, post.CreatedAt.IsZero())
}

func TestCreatePost_Validation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(*CreatePostInput)
	}{
		{"empty title", FieldTitle, func(in *CreatePostInput) { in.Title = "" }},
		{"blank title", FieldTitle, func(in *CreatePostInput) { in.Title = "   " }},
		{"short title", FieldTitle, func(in *CreatePostInput) { in.Title = "Hi" }},
		{"empty content", FieldContent, func(in *CreatePostInput) { in.Content = "" }},
		{"missing image", FieldImage, func(in *CreatePostInput) { in.Image = "" }},
		{"missing author id", FieldAuthorID, func(in *CreatePostInput) { in.AuthorID = "" }},
		{"missing author name", FieldAuthorName, func(in *CreatePostInput) { in.AuthorName = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)
			in := validInput()
			tt.edit(&in)

			_, err := env.service.CreatePost(context.Background(), in)
			require.Error(t, err)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, int64(0), env.store.Calls(), "validation must fail before any store call")
		})
	}
}

func TestUpdatePost_MissingPost(t *testing.T) {
	env := setup(t)
	title := "New title"

	err := env.service.UpdatePost(context.Background(), "p404", UpdatePostInput{Title: &title})
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePost_OverwritesGivenFieldsOnly(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Original")

	before, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)

	title := "Renamed Post"
	require.NoError(t, env.service.UpdatePost(ctx, id, UpdatePostInput{Title: &title}))

	after, found, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Renamed Post", after.Title)
	assert.Equal(t, "renamed post", after.TitleLower)
	assert.Equal(t, before.Content, after.Content)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	assert.True(t, after.UpdatedAt.After(*before.UpdatedAt), "updatedAt must be refreshed")
}

func TestUpdatePost_EmptyInputStillRefreshesUpdatedAt(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Original")

	before, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	require.NoError(t, env.service.UpdatePost(ctx, id, UpdatePostInput{}))

	after, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(*before.UpdatedAt))
}

func TestUpdatePostFields_RejectsImmutableFields(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Original")

	before, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)

	for _, fields := range []map[string]any{
		{"id": "p99", "title": "Sneaky"},
		{"createdAt": "2000-01-01T00:00:00Z"},
	} {
		err := env.service.UpdatePostFields(ctx, id, fields)
		assert.True(t, IsValidationError(err))
	}

	after, found, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, after.ID)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	assert.Equal(t, "Original", after.Title)
}

func TestUpdatePostFields_TypeAndUnknownChecks(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Original")

	assert.True(t, IsValidationError(env.service.UpdatePostFields(ctx, id, map[string]any{"likes": "100"})))
	assert.True(t, IsValidationError(env.service.UpdatePostFields(ctx, id, map[string]any{"title": 42})))
	require.NoError(t, env.service.UpdatePostFields(ctx, id, map[string]any{"content": "fresh"}))

	post, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "fresh", post.Content)
}

func TestDeletePost_Scenario(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Hello")
	require.Equal(t, "p1", id)

	require.NoError(t, env.service.DeletePost(ctx, "p1"))

	post, found, err := env.service.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, post)

	err = env.service.DeletePost(ctx, "p1")
	assert.True(t, IsNotFound(err))
}

func TestListPosts_NewestFirst(t *testing.T) {
	env := setup(t)
	createPost(t, env, "First")
	createPost(t, env, "Second")
	createPost(t, env, "Third")

	list, err := env.service.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].Title)
	assert.Equal(t, "First", list[2].Title)
}

func TestListPostsPage(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	for _, title := range []string{"Post A", "Post B", "Post C", "Post D", "Post E"} {
		createPost(t, env, title)
	}

	page, err := env.service.ListPostsPage(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "Post E", page.Posts[0].Title)
	require.NotNil(t, page.Cursor)

	page, err = env.service.ListPostsPage(ctx, 2, *page.Cursor)
	require.NoError(t, err)
	assert.Equal(t, "Post C", page.Posts[0].Title)
	require.NotNil(t, page.Cursor)

	page, err = env.service.ListPostsPage(ctx, 2, *page.Cursor)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "Post A", page.Posts[0].Title)
	assert.Nil(t, page.Cursor)

	_, err = env.service.ListPostsPage(ctx, 2, "not base64!")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestSearchPostsByTitle(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	createPost(t, env, "Hello World")
	createPost(t, env, "help wanted")
	createPost(t, env, "Goodbye")

	found, err := env.service.SearchPostsByTitle(ctx, "HEL")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Hello World", found[0].Title)
	assert.Equal(t, "help wanted", found[1].Title)

	none, err := env.service.SearchPostsByTitle(ctx, "xyz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchPostsByTitle_BlankTermSkipsStore(t *testing.T) {
	env := setup(t)
	for _, term := range []string{"", "   "} {
		result, err := env.service.SearchPostsByTitle(context.Background(), term)
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	}
	assert.Equal(t, int64(0), env.store.Calls())
}

func TestCounters_RoundTrip(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Hello")

	require.NoError(t, env.service.LikePost(ctx, id))
	require.NoError(t, env.service.DislikePost(ctx, id))
	post, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.Likes)
	assert.Equal(t, int64(1), post.Dislikes)

	require.NoError(t, env.service.UnlikePost(ctx, id))
	require.NoError(t, env.service.UndislikePost(ctx, id))
	post, _, err = env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), post.Likes)
	assert.Equal(t, int64(0), post.Dislikes)
}

func TestCounters_HaveNoFloor(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Hello")

	require.NoError(t, env.service.UnlikePost(ctx, id))
	post, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), post.Likes)
}

func TestCounters_MissingPost(t *testing.T) {
	env := setup(t)
	assert.True(t, IsNotFound(env.service.LikePost(context.Background(), "p404")))
}

func TestCache_ServesReadsUntilInvalidated(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Hello")

	_, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	calls := env.store.Calls()
	_, _, err = env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, calls, env.store.Calls(), "second read must be served from the cache")

	require.NoError(t, env.service.LikePost(ctx, id))
	post, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.Likes, "like must invalidate the single-post key")
}

func TestCache_InvalidationFollowsTable(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Hello")

	warm := func() {
		_, err := env.service.ListPosts(ctx)
		require.NoError(t, err)
		_, _, err = env.service.GetPost(ctx, id)
		require.NoError(t, err)
		_, err = env.service.SearchPostsByTitle(ctx, "hel")
		require.NoError(t, err)
	}

	warm()
	require.NoError(t, env.service.LikePost(ctx, id))
	assert.False(t, env.cache.Cached(cachekeys.Posts()))
	assert.False(t, env.cache.Cached(cachekeys.Post(id)))
	assert.True(t, env.cache.Cached(cachekeys.Search("hel")))

	warm()
	title := "Hello again"
	require.NoError(t, env.service.UpdatePost(ctx, id, UpdatePostInput{Title: &title}))
	assert.False(t, env.cache.Cached(cachekeys.Posts()))
	assert.False(t, env.cache.Cached(cachekeys.Post(id)))
	assert.False(t, env.cache.Cached(cachekeys.Search("hel")))

	warm()
	createPost(t, env, "Another")
	assert.False(t, env.cache.Cached(cachekeys.Posts()))
	assert.True(t, env.cache.Cached(cachekeys.Post(id)))
	assert.False(t, env.cache.Cached(cachekeys.Search("hel")))
}

func TestCache_CreateDropsCachedAbsence(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// memory store ids are sequential, so p1 is the next id handed out
	_, found, err := env.service.GetPost(ctx, "p1")
	require.NoError(t, err)
	require.False(t, found)
	require.True(t, env.cache.Cached(cachekeys.Post("p1")))

	id := createPost(t, env, "Hello")
	require.Equal(t, "p1", id)

	post, found, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Hello", post.Title)
}

func TestCache_FailedWriteDoesNotInvalidate(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	createPost(t, env, "Hello")

	_, err := env.service.ListPosts(ctx)
	require.NoError(t, err)

	require.Error(t, env.service.LikePost(ctx, "p404"))
	require.Error(t, env.service.DeletePost(ctx, "p404"))
	_, err = env.service.CreatePost(ctx, CreatePostInput{})
	require.Error(t, err)

	assert.True(t, env.cache.Cached(cachekeys.Posts()))
}

func TestGetPost_ReturnsIndependentCopies(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	id := createPost(t, env, "Hello")

	first, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	first.Title = "mutated by caller"

	second, _, err := env.service.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", second.Title)
}

// mockRepository is a testify mock of Repository for failure-path tests
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, input CreatePostInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Post), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]*Post, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Post), args.Error(1)
}

func (m *mockRepository) SearchByTitlePrefix(ctx context.Context, prefix string) ([]*Post, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Post), args.Error(1)
}

func (m *mockRepository) AdjustCounter(ctx context.Context, id string, counter Counter, delta int64) error {
	return m.Called(ctx, id, counter, delta).Error(0)
}

func TestGetPost_TransportErrorIsNotAbsence(t *testing.T) {
	repo := new(mockRepository)
	svc := NewPostService(repo, nil, nil)
	ctx := context.Background()

	cause := errors.New("connection reset")
	repo.On("GetByID", ctx, "p1").Return(nil, docstore.NewTransportError("get", docstore.CollectionPosts, cause))

	post, found, err := svc.GetPost(ctx, "p1")
	require.Error(t, err)
	assert.False(t, found)
	assert.Nil(t, post)
	assert.True(t, docstore.IsTransport(err))
	assert.ErrorIs(t, err, cause)
	repo.AssertExpectations(t)
}

func TestCounters_UseAtomicDeltas(t *testing.T) {
	repo := new(mockRepository)
	svc := NewPostService(repo, nil, nil)
	ctx := context.Background()

	repo.On("AdjustCounter", ctx, "p1", CounterLikes, int64(1)).Return(nil).Once()
	repo.On("AdjustCounter", ctx, "p1", CounterLikes, int64(-1)).Return(nil).Once()
	repo.On("AdjustCounter", ctx, "p1", CounterDislikes, int64(1)).Return(nil).Once()
	repo.On("AdjustCounter", ctx, "p1", CounterDislikes, int64(-1)).Return(nil).Once()

	require.NoError(t, svc.LikePost(ctx, "p1"))
	require.NoError(t, svc.UnlikePost(ctx, "p1"))
	require.NoError(t, svc.DislikePost(ctx, "p1"))
	require.NoError(t, svc.UndislikePost(ctx, "p1"))

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
