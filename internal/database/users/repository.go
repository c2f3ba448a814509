// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByUsername("alice")
package users

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"pressroom/internal/entities"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user. The username carries a unique index; a
// conflict is surfaced as ErrUserExists.
func (r *Repository) Create(user *entities.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreateByUsername resolves a federated login name to a local account,
// provisioning one with an empty password hash on first contact. Creation is
// idempotent: a concurrent writer losing the race on the unique username
// index falls back to a lookup.
func (r *Repository) GetOrCreateByUsername(username string) (*entities.User, error) {
	user, err := r.GetByUsername(username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	created := &entities.User{Username: username}
	if err := r.Create(created); err != nil {
		if errors.Is(err, ErrUserExists) {
			return r.GetByUsername(username)
		}
		return nil, err
	}
	return created, nil
}

// Count returns the number of users in the database.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// isUniqueViolation matches the SQLite driver's constraint error, which gorm
// does not always translate to ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
