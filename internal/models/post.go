package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Title          *string    `json:"title,omitempty" db:"title"`
	Text           string     `json:"text" db:"text"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	AuthorID       *uuid.UUID `json:"authorId,omitempty" db:"author_id"`
	AuthorUsername string     `json:"authorUsername" db:"author_username"`
	GroupID        *uuid.UUID `json:"groupId,omitempty" db:"group_id"`
	GroupSlug      *string    `json:"groupSlug,omitempty" db:"group_slug"`
	GroupTitle     *string    `json:"groupTitle,omitempty" db:"group_title"`
	Image          *string    `json:"image,omitempty" db:"image"`
	IsPinned       bool       `json:"isPinned" db:"is_pinned"`
}

// IsAuthoredBy reports whether userID wrote the post.
func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p.AuthorID != nil && *p.AuthorID == userID
}

// PostFilter narrows a post listing. Zero value means every post.
type PostFilter struct {
	GroupID *uuid.UUID
	// AuthorID keeps posts written by this user.
	AuthorID *uuid.UUID
	// FollowerID keeps posts whose author is followed by this user.
	FollowerID *uuid.UUID
	// Query matches post text, author username or group title, case-insensitively.
	Query string
}
