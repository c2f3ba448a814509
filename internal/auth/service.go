package auth

import (
	"errors"
	"fmt"
	"regexp"

	"pressroom/internal/config"
	"pressroom/internal/database/users"
	"pressroom/internal/entities"
)

// usernamePattern: 3-64 chars, alphanumeric and underscore/hyphen only.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

var (
	// ErrInvalidCredentials is returned for every failed login: unknown
	// username, wrong password, or a federated-only account. Callers must
	// not distinguish the cases (account enumeration).
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrUserExists       = users.ErrUserExists
)

// Service handles local credential registration and authentication.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	return &Service{
		users:  repo,
		config: cfg,
	}
}

// Register creates a new user with password authentication.
func (s *Service) Register(username, password string) (*entities.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user. Every failure
// mode collapses to ErrInvalidCredentials except store errors, which are
// wrapped for the caller to log.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Federated-only accounts have an empty hash and can never log in
	// locally; VerifyPassword already refuses those.
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.GetByID(id)
}
