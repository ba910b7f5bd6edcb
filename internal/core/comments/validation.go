package comments

import (
	"fmt"
	"strings"
)

func validatePostID(postID string) error {
	if strings.TrimSpace(postID) == "" {
		return NewValidationError("postId", "post id is required")
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("text", "comment text is required")
	}
	if len(text) > MaxTextLength {
		return NewValidationError("text", fmt.Sprintf("comment text exceeds %d bytes", MaxTextLength))
	}
	return nil
}

func validateNewComment(input NewComment) error {
	if err := validateText(input.Text); err != nil {
		return err
	}
	if strings.TrimSpace(input.UserName) == "" {
		return NewValidationError("userName", "author name is required")
	}
	return nil
}
