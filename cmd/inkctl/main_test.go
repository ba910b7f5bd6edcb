package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inkwell/internal/core/comments"
	"Inkwell/internal/core/posts"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		plansFile, plansJSON, postsJSON, postsLimit = "", false, false, 0
		envFiles = []string{".env"}
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlansList_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`plans:
  - id: 7
    name: Solo
    price: $5/mo
    features: [Publish posts, Comments]
`), 0o600))

	out, err := execute(t, "plans", "list", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "7\tSolo\t$5/mo\tPublish posts; Comments\n", out)
}

func TestPlansList_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plans: []\n"), 0o600))

	_, err := execute(t, "plans", "list", "--file", path)
	assert.Error(t, err)
}

func TestPostsList_MemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	out, err := execute(t, "posts", "list", "--env-file", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "No posts.\n", out)
}

func TestPrintPosts(t *testing.T) {
	list := []*posts.Post{{
		ID:        "p1",
		Title:     "Hello",
		CreatedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Likes:     3,
		Dislikes:  1,
		Comments:  []comments.Comment{{ID: "c1", Text: "hi"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, printPosts(&buf, list, false))
	assert.Equal(t, "p1\t2024-05-06\tHello\t+3/-1\t1 comments\n", buf.String())

	buf.Reset()
	require.NoError(t, printPosts(&buf, list, true))
	assert.Contains(t, buf.String(), `"title": "Hello"`)
}
