package users

import "context"

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Issue(userID, name, email string) (string, error)
	VerifySubject(token string) (string, error)
}

// UserService defines the account operations behind sign-up, sign-in and session checks
type UserService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error)
	SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error)

	// Authenticate resolves a bearer token to its user or returns an AuthError
	Authenticate(ctx context.Context, token string) (*User, error)

	GetUserByID(ctx context.Context, id string) (*User, error)
}

// UserRepository defines account persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
