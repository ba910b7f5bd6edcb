package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// emailRegex is a loose shape check: something@something.tld
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxUsernameLength = 64

type userService struct {
	userRepo   UserRepository
	tokens     TokenIssuer
	logger     *slog.Logger
	bcryptCost int
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, tokens TokenIssuer, logger *slog.Logger) UserService {
	return NewUserServiceWithCost(userRepo, tokens, logger, bcrypt.DefaultCost)
}

// NewUserServiceWithCost creates a user service with a custom bcrypt cost (tests use bcrypt.MinCost)
func NewUserServiceWithCost(userRepo UserRepository, tokens TokenIssuer, logger *slog.Logger, cost int) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:   userRepo,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: cost,
	}
}

// SignUp creates an account and signs it in
func (s *userService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateSignUp(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &User{
		Name:         req.Username,
		Email:        req.Email,
		ImageURL:     req.ImageURL,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return s.issue(user)
}

// SignIn checks the credentials and returns a fresh token
func (s *userService) SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate resolves a bearer token to its user
func (s *userService) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.VerifySubject(token)
	if err != nil {
		return nil, NewAuthError("invalid token", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, NewAuthError("unknown user", err)
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) issue(user *User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Name, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func validateSignUp(req SignUpRequest) error {
	if req.Username == "" {
		return &InvalidUsernameError{Reason: "username is required"}
	}
	if utf8.RuneCountInString(req.Username) > maxUsernameLength {
		return &InvalidUsernameError{Reason: fmt.Sprintf("username exceeds %d characters", maxUsernameLength)}
	}
	if !emailRegex.MatchString(req.Email) {
		return &InvalidEmailError{Email: req.Email}
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return &WeakPasswordError{MinLength: MinPasswordLength}
	}
	return nil
}
