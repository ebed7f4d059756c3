package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAvatar is the avatar key every new profile starts with.
const DefaultAvatar = "default.jpg"

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	HashedPassword string    `json:"-" db:"password_hash"`
	IsAdmin        bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// Profile holds the editable, public part of a user.
type Profile struct {
	UserID uuid.UUID `json:"userId" db:"user_id"`
	Avatar string    `json:"avatar" db:"avatar"`
	Info   string    `json:"info" db:"info"`
}

// AuthorStat is a user ranked by the number of likes their posts received.
type AuthorStat struct {
	User
	Likes int `json:"likes" db:"likes"`
}
