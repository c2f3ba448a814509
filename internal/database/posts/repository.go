// Package posts provides database operations for published posts.
package posts

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pressroom/internal/entities"
)

var ErrPostNotFound = errors.New("post not found")

// Repository handles all post database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new posts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new post. CreatedAt is set by the store and never
// changes afterwards.
func (r *Repository) Create(post *entities.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID.
func (r *Repository) GetByID(id uint) (*entities.Post, error) {
	var post entities.Post
	err := r.db.First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Delete removes a post by ID.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Post{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// ListRecent returns posts newest first, for the index page.
func (r *Repository) ListRecent() ([]entities.Post, error) {
	var posts []entities.Post
	err := r.db.Order("created_at desc").Find(&posts).Error
	return posts, err
}
