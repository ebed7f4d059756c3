package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Follow is a directed edge: UserID receives AuthorID's posts in their feed.
type Follow struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"userId" db:"user_id"`
	AuthorID uuid.UUID `json:"authorId" db:"author_id"`
	// Username of the follower, filled on reads.
	Username  string    `json:"username" db:"username"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Opposite returns the reaction that excludes k on the same post.
func (k ReactionKind) Opposite() ReactionKind {
	if k == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

// Reaction is a like or a dislike. A user holds at most one per post.
type Reaction struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	UserID    uuid.UUID    `json:"userId" db:"user_id"`
	PostID    uuid.UUID    `json:"postId" db:"post_id"`
	Kind      ReactionKind `json:"kind" db:"kind"`
	Username  string       `json:"username" db:"username"`
	IsRead    bool         `json:"isRead" db:"is_read"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// ReactionCounts summarizes the reactions on a single post.
type ReactionCounts struct {
	Likes    int `json:"likes" db:"likes"`
	Dislikes int `json:"dislikes" db:"dislikes"`
}

// Events are the unread notifications addressed to one user.
type Events struct {
	Comments []*Comment  `json:"comments"`
	Follows  []*Follow   `json:"follows"`
	Likes    []*Reaction `json:"likes"`
	Dislikes []*Reaction `json:"dislikes"`
}

// Count is the badge number: the size of all four sets together.
func (e *Events) Count() int {
	return len(e.Comments) + len(e.Follows) + len(e.Likes) + len(e.Dislikes)
}

// IDs lists every event so it can be acknowledged later.
func (e *Events) IDs() EventIDs {
	return EventIDs{
		Comments: lo.Map(e.Comments, func(c *Comment, _ int) uuid.UUID { return c.ID }),
		Follows:  lo.Map(e.Follows, func(f *Follow, _ int) uuid.UUID { return f.ID }),
		Reactions: append(
			lo.Map(e.Likes, func(r *Reaction, _ int) uuid.UUID { return r.ID }),
			lo.Map(e.Dislikes, func(r *Reaction, _ int) uuid.UUID { return r.ID })...,
		),
	}
}

// EventIDs selects events to mark as read.
type EventIDs struct {
	Comments  []uuid.UUID `json:"comments"`
	Follows   []uuid.UUID `json:"follows"`
	Reactions []uuid.UUID `json:"reactions"`
}

func (ids EventIDs) Empty() bool {
	return len(ids.Comments) == 0 && len(ids.Follows) == 0 && len(ids.Reactions) == 0
}
