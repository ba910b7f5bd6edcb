// Package cachekeys owns the mapping from a successful write to the query-cache keys it invalidates.
package cachekeys

import (
	"Inkwell/internal/core/querycache"
)

// Operation names a mutating call on the blog core
type Operation string

const (
	OpCreatePost    Operation = "createPost"
	OpUpdatePost    Operation = "updatePost"
	OpDeletePost    Operation = "deletePost"
	OpLikePost      Operation = "likePost"
	OpUnlikePost    Operation = "unlikePost"
	OpDislikePost   Operation = "dislikePost"
	OpUndislikePost Operation = "undislikePost"
	OpAddComment    Operation = "addComment"
	OpUpdateComment Operation = "updateComment"
	OpDeleteComment Operation = "deleteComment"
)

// Query key roots
const (
	RootPosts    = "posts"
	RootPost     = "post"
	RootComments = "comments"
	RootBlogs    = "blogs"
)

// Posts is the key of the full post listing
func Posts() querycache.Key { return querycache.Key{RootPosts} }

// Post is the key of a single post view
func Post(id string) querycache.Key { return querycache.Key{RootPost, id} }

// Comments is the key of a post's comment list
func Comments(postID string) querycache.Key { return querycache.Key{RootComments, postID} }

// Blogs is the root of every scoped listing, including searches
func Blogs() querycache.Key { return querycache.Key{RootBlogs} }

// Search is the key of a title search
func Search(term string) querycache.Key { return querycache.Key{RootBlogs, "search", term} }

// target says whether a key in the table is completed with the operation's target id
type target int

const (
	bare target = iota
	withTarget
)

type keyTemplate struct {
	root string
	kind target
}

var table = map[Operation][]keyTemplate{
	OpCreatePost:    {{RootPosts, bare}, {RootPost, withTarget}, {RootBlogs, bare}},
	OpUpdatePost:    {{RootPosts, bare}, {RootPost, withTarget}, {RootBlogs, bare}},
	OpDeletePost:    {{RootPosts, bare}, {RootPost, withTarget}, {RootBlogs, bare}},
	OpLikePost:      {{RootPosts, bare}, {RootPost, withTarget}},
	OpUnlikePost:    {{RootPosts, bare}, {RootPost, withTarget}},
	OpDislikePost:   {{RootPosts, bare}, {RootPost, withTarget}},
	OpUndislikePost: {{RootPosts, bare}, {RootPost, withTarget}},
	OpAddComment:    {{RootComments, withTarget}},
	OpUpdateComment: {{RootComments, withTarget}},
	OpDeleteComment: {{RootComments, withTarget}},
}

// For returns the keys a successful op on target invalidates.
// target is the post id for post and comment operations. For CreatePost it is the new id,
// which drops any cached absence recorded before the post existed.
func For(op Operation, target string) []querycache.Key {
	templates := table[op]
	keys := make([]querycache.Key, 0, len(templates))
	for _, t := range templates {
		if t.kind == withTarget {
			keys = append(keys, querycache.Key{t.root, target})
			continue
		}
		keys = append(keys, querycache.Key{t.root})
	}
	return keys
}

// Operations lists every operation in the table
func Operations() []Operation {
	return []Operation{
		OpCreatePost, OpUpdatePost, OpDeletePost,
		OpLikePost, OpUnlikePost, OpDislikePost, OpUndislikePost,
		OpAddComment, OpUpdateComment, OpDeleteComment,
	}
}

// Invalidator drops cached queries by key prefix
type Invalidator interface {
	Invalidate(prefix querycache.Key)
}

// Apply invalidates the keys of a successful op. A nil invalidator is ignored.
func Apply(inv Invalidator, op Operation, target string) {
	if inv == nil {
		return
	}
	for _, key := range For(op, target) {
		inv.Invalidate(key)
	}
}
