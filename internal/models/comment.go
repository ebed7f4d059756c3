package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reply to a post. IsRead flips once the post's author has seen it.
type Comment struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PostID         uuid.UUID `json:"postId" db:"post_id"`
	AuthorID       uuid.UUID `json:"authorId" db:"author_id"`
	AuthorUsername string    `json:"authorUsername" db:"author_username"`
	Text           string    `json:"text" db:"text"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	IsRead         bool      `json:"isRead" db:"is_read"`
}
