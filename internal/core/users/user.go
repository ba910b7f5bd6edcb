package users

import "time"

// User is an account known to the blog. PasswordHash never leaves the package boundary in JSON.
type User struct {
	CreatedAt    time.Time `json:"createdAt"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
}

// SignUpRequest represents the input for creating an account
type SignUpRequest struct {
	ImageURL *string `json:"imageUrl,omitempty"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
}

// SignInRequest represents email/password credentials
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by sign-up and sign-in
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Stored field names in the users collection
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldImageURL     = "imageUrl"
	fieldPasswordHash = "passwordHash"
	fieldCreatedAt    = "createdAt"
)

// MinPasswordLength is the shortest password accepted at sign-up
const MinPasswordLength = 6

// userRecord is the stored shape of a User
type userRecord struct {
	CreatedAt    time.Time `json:"createdAt"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
}

func (r *userRecord) toUser() *User {
	return &User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		ImageURL:     r.ImageURL,
		CreatedAt:    r.CreatedAt,
		PasswordHash: r.PasswordHash,
	}
}
