package posts

import (
	"time"

	"Inkwell/internal/core/comments"
)

// Post field names as stored in the posts collection
const (
	FieldTitle       = "title"
	FieldTitleLower  = "titleLower"
	FieldContent     = "content"
	FieldImage       = "image"
	FieldAuthorID    = "authorId"
	FieldAuthorName  = "authorName"
	FieldAuthorImage = "authorImage"
	FieldLikes       = "likes"
	FieldDislikes    = "dislikes"
	FieldComments    = comments.FieldComments
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldID          = "id"
)

// Limits carried over from the post form schema
const (
	MinTitleLength   = 3
	MaxTitleLength   = 100
	MaxContentLength = 100000
)

// Post is a blog post with its embedded comments.
// Likes and Dislikes are maintained with atomic store increments.
type Post struct {
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty"`
	AuthorImage *string            `json:"authorImage,omitempty"`
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	TitleLower  string             `json:"titleLower"`
	Content     string             `json:"content"`
	Image       string             `json:"image"`
	AuthorID    string             `json:"authorId"`
	AuthorName  string             `json:"authorName"`
	Comments    []comments.Comment `json:"comments"`
	Likes       int64              `json:"likes"`
	Dislikes    int64              `json:"dislikes"`
}

// clone returns a copy that shares no slices with p
func (p *Post) clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Comments = append([]comments.Comment{}, p.Comments...)
	return &c
}

// CreatePostInput is the caller-supplied part of a new post
type CreatePostInput struct {
	AuthorImage *string `json:"authorImage,omitempty"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Image       string  `json:"image"`
	AuthorID    string  `json:"authorId"`
	AuthorName  string  `json:"authorName"`
}

// UpdatePostInput is a partial update; nil fields are left unchanged
type UpdatePostInput struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	Image       *string `json:"image,omitempty"`
	AuthorName  *string `json:"authorName,omitempty"`
	AuthorImage *string `json:"authorImage,omitempty"`
}

// fields returns the store fields named by the input
func (in UpdatePostInput) fields() map[string]any {
	out := make(map[string]any)
	if in.Title != nil {
		out[FieldTitle] = *in.Title
	}
	if in.Content != nil {
		out[FieldContent] = *in.Content
	}
	if in.Image != nil {
		out[FieldImage] = *in.Image
	}
	if in.AuthorName != nil {
		out[FieldAuthorName] = *in.AuthorName
	}
	if in.AuthorImage != nil {
		out[FieldAuthorImage] = *in.AuthorImage
	}
	return out
}

// Counter is one of the post reaction counters
type Counter string

const (
	CounterLikes    Counter = FieldLikes
	CounterDislikes Counter = FieldDislikes
)

// PostPage is one page of the post listing
type PostPage struct {
	Cursor *string `json:"cursor,omitempty"`
	Posts  []*Post `json:"posts"`
}
