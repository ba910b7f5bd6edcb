package comments

import "time"

// Comment is a reply embedded in its parent post's comment sequence
type Comment struct {
	CreatedAt time.Time `json:"createdAt"`
	UserImage *string   `json:"userImage,omitempty"`
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId,omitempty"`
	UserName  string    `json:"userName"`
}

// NewComment is the caller-supplied part of a comment.
// UserID identifies the commenter for ownership checks; UserName is display only.
type NewComment struct {
	UserImage *string `json:"userImage,omitempty"`
	Text      string  `json:"text"`
	UserID    string  `json:"userId,omitempty"`
	UserName  string  `json:"userName"`
}

// FieldComments is the post document field holding the comment sequence
const FieldComments = "comments"

// MaxTextLength bounds a comment body in bytes
const MaxTextLength = 10000
