package posts

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// immutableFields can never be written through an update
var immutableFields = map[string]bool{
	FieldID:        true,
	FieldCreatedAt: true,
}

// updatableFields are the fields UpdatePostFields accepts
var updatableFields = map[string]bool{
	FieldTitle:       true,
	FieldContent:     true,
	FieldImage:       true,
	FieldAuthorName:  true,
	FieldAuthorImage: true,
}

func validateCreate(input CreatePostInput) error {
	if err := validateTitle(input.Title); err != nil {
		return err
	}
	if err := validateContent(input.Content); err != nil {
		return err
	}
	if strings.TrimSpace(input.Image) == "" {
		return NewValidationError(FieldImage, "image is required")
	}
	if strings.TrimSpace(input.AuthorID) == "" {
		return NewValidationError(FieldAuthorID, "author id is required")
	}
	if strings.TrimSpace(input.AuthorName) == "" {
		return NewValidationError(FieldAuthorName, "author name is required")
	}
	return nil
}

func validateUpdate(input UpdatePostInput) error {
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return err
		}
	}
	if input.Content != nil {
		if err := validateContent(*input.Content); err != nil {
			return err
		}
	}
	if input.Image != nil && strings.TrimSpace(*input.Image) == "" {
		return NewValidationError(FieldImage, "image must not be blank")
	}
	if input.AuthorName != nil && strings.TrimSpace(*input.AuthorName) == "" {
		return NewValidationError(FieldAuthorName, "author name must not be blank")
	}
	return nil
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return NewValidationError(FieldTitle, "title is required")
	}
	n := utf8.RuneCountInString(trimmed)
	if n < MinTitleLength {
		return NewValidationError(FieldTitle, fmt.Sprintf("title must be at least %d characters", MinTitleLength))
	}
	if n > MaxTitleLength {
		return NewValidationError(FieldTitle, fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return NewValidationError(FieldContent, "content is required")
	}
	if len(content) > MaxContentLength {
		return NewValidationError(FieldContent, fmt.Sprintf("content exceeds %d bytes", MaxContentLength))
	}
	return nil
}

// inputFromFields converts an untyped update into UpdatePostInput.
// Immutable, unknown, and non-string fields are rejected.
func inputFromFields(fields map[string]any) (UpdatePostInput, error) {
	var input UpdatePostInput
	for name, value := range fields {
		if immutableFields[name] {
			return input, NewValidationError(name, "field is immutable")
		}
		if !updatableFields[name] {
			return input, NewValidationError(name, "unknown or read-only field")
		}
		s, ok := value.(string)
		if !ok {
			return input, NewValidationError(name, fmt.Sprintf("expected string, got %T", value))
		}
		switch name {
		case FieldTitle:
			input.Title = &s
		case FieldContent:
			input.Content = &s
		case FieldImage:
			input.Image = &s
		case FieldAuthorName:
			input.AuthorName = &s
		case FieldAuthorImage:
			input.AuthorImage = &s
		}
	}
	return input, nil
}
