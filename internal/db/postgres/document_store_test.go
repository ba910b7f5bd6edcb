package postgres

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/core/docstore"
	"Inkwell/internal/db/migrations"
)

const testCollection = "test_posts"

// setupTestDB connects to TEST_DATABASE_URL and runs migrations. Skips when unset.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres document store tests")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.Ping(), "Failed to ping test database")
	require.NoError(t, migrations.Up(db), "Failed to run migrations")

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM documents WHERE collection = $1", testCollection)
		_ = db.Close()
	})
	return db
}

func TestBuildListQuery(t *testing.T) {
	q := docstore.Query{
		Filters: docstore.PrefixRange("titleLower", "hel"),
		Limit:   10,
		Offset:  5,
	}.Sort("createdAt", true)

	query, args, err := buildListQuery("posts", q)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "SELECT id, data FROM documents WHERE collection = $1"))
	assert.Contains(t, query, `(data->>$2::text) COLLATE "C" >= $3::text COLLATE "C"`)
	assert.Contains(t, query, `(data->>$4::text) COLLATE "C" <= $5::text COLLATE "C"`)
	assert.Contains(t, query, `(data->>$6::text) COLLATE "C" DESC`)
	assert.Contains(t, query, "LIMIT $7")
	assert.Contains(t, query, "OFFSET $8")
	assert.Equal(t, []any{"posts", "titleLower", "hel", "titleLower", "hel" + docstore.MaxCharSentinel, "createdAt", 10, 5}, args)
}

func TestBuildListQuery_ValueKinds(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 600000000, time.UTC)
	q := docstore.Query{}.
		Where("likes", docstore.OpGreater, 3).
		Where("published", docstore.OpEqual, true).
		Where("createdAt", docstore.OpLess, at)

	query, args, err := buildListQuery("posts", q)
	require.NoError(t, err)
	assert.Contains(t, query, "::numeric END) > $3::numeric")
	assert.Contains(t, query, "= to_jsonb($5::boolean)")
	assert.Contains(t, args, "2024-01-02T03:04:05.600000Z")

	_, _, err = buildListQuery("posts", docstore.Query{}.Where("published", docstore.OpLess, true))
	assert.Error(t, err)

	_, _, err = buildListQuery("posts", docstore.Query{}.Where("tags", docstore.OpEqual, []string{"a"}))
	assert.Error(t, err)
}

func TestStampExpr(t *testing.T) {
	sqlText, args := stampExpr(nil, 4)
	assert.Equal(t, `'{}'::jsonb`, sqlText)
	assert.Empty(t, args)

	sqlText, args = stampExpr([]string{"createdAt", "updatedAt"}, 4)
	assert.True(t, strings.HasPrefix(sqlText, "jsonb_build_object($4::text, "))
	assert.Contains(t, sqlText, "$5::text, ")
	assert.Equal(t, []any{"createdAt", "updatedAt"}, args)
}

func TestDocumentStore_CRUD(t *testing.T) {
	db := setupTestDB(t)
	store := NewDocumentStore(db, nil)
	ctx := context.Background()

	id, err := store.Create(ctx, testCollection, map[string]any{
		"title":      "Hello",
		"titleLower": "hello",
		"likes":      int64(0),
		"comments":   []any{},
		"createdAt":  docstore.ServerTimestamp,
		"updatedAt":  docstore.ServerTimestamp,
	})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	doc, err := store.Get(ctx, testCollection, id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Fields["title"])
	assert.Equal(t, doc.Fields["createdAt"], doc.Fields["updatedAt"])
	assert.Equal(t, float64(0), doc.Fields["likes"])

	require.NoError(t, store.Update(ctx, testCollection, id, map[string]any{"title": "Changed", "updatedAt": docstore.ServerTimestamp}))
	doc, err = store.Get(ctx, testCollection, id)
	require.NoError(t, err)
	assert.Equal(t, "Changed", doc.Fields["title"])
	assert.Equal(t, "hello", doc.Fields["titleLower"])

	require.NoError(t, store.Increment(ctx, testCollection, id, "likes", 1))
	require.NoError(t, store.Increment(ctx, testCollection, id, "likes", -2))
	doc, err = store.Get(ctx, testCollection, id)
	require.NoError(t, err)
	assert.Equal(t, float64(-1), doc.Fields["likes"])

	require.NoError(t, store.Delete(ctx, testCollection, id))
	_, err = store.Get(ctx, testCollection, id)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, testCollection, id), docstore.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, testCollection, id, map[string]any{"a": 1}), docstore.ErrNotFound)
	assert.ErrorIs(t, store.Increment(ctx, testCollection, id, "likes", 1), docstore.ErrNotFound)
}

func TestDocumentStore_ListPrefixAndOrder(t *testing.T) {
	db := setupTestDB(t)
	store := NewDocumentStore(db, nil)
	ctx := context.Background()

	for _, title := range []string{"hello", "help", "world"} {
		_, err := store.Create(ctx, testCollection, map[string]any{"titleLower": title, "createdAt": docstore.ServerTimestamp})
		require.NoError(t, err)
	}

	q := docstore.Query{Filters: docstore.PrefixRange("titleLower", "hel")}.Sort("titleLower", false)
	docs, err := store.List(ctx, testCollection, q)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "hello", docs[0].Fields["titleLower"])
	assert.Equal(t, "help", docs[1].Fields["titleLower"])

	limited, err := store.List(ctx, testCollection, docstore.Query{Limit: 1}.Sort("titleLower", true))
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "world", limited[0].Fields["titleLower"])
}

func TestDocumentStore_Mutate(t *testing.T) {
	db := setupTestDB(t)
	store := NewDocumentStore(db, nil)
	ctx := context.Background()

	id, err := store.Create(ctx, testCollection, map[string]any{"comments": []any{}})
	require.NoError(t, err)

	err = store.Mutate(ctx, testCollection, id, func(fields map[string]any) (map[string]any, error) {
		list := fields["comments"].([]any)
		return map[string]any{"comments": append(list, map[string]any{"id": "c1", "text": "hi"})}, nil
	})
	require.NoError(t, err)

	doc, err := store.Get(ctx, testCollection, id)
	require.NoError(t, err)
	require.Len(t, doc.Fields["comments"], 1)

	err = store.Mutate(ctx, testCollection, "missing", func(map[string]any) (map[string]any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
