package entities

import "time"

// User is an account that can log in locally (PasswordHash set) or via a
// federated identity provider (PasswordHash empty).
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string    `gorm:"size:100" json:"-"` // empty for federated-only accounts
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is a published text entry. AuthorID is a weak reference used only for
// ownership checks; posts are never updated in place.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:512" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	AuthorID  uint      `gorm:"index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
