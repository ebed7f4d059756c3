package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Chat is the single conversation between two users. User1ID always sorts
// before User2ID, so a pair has exactly one representation.
type Chat struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	User1ID       uuid.UUID  `json:"user1Id" db:"user1_id"`
	User2ID       uuid.UUID  `json:"user2Id" db:"user2_id"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	LastMessageID *uuid.UUID `json:"lastMessageId,omitempty" db:"last_message_id"`
}

// NormalizePair orders two user ids the way chats are keyed.
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

// NewChat builds an unsaved chat for the pair in canonical order.
func NewChat(a, b uuid.UUID) *Chat {
	first, second := NormalizePair(a, b)
	return &Chat{
		ID:        uuid.New(),
		User1ID:   first,
		User2ID:   second,
		CreatedAt: time.Now(),
	}
}

func (c *Chat) HasParty(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Peer returns the other party of the chat.
func (c *Chat) Peer(userID uuid.UUID) uuid.UUID {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

type Message struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChatID      uuid.UUID `json:"chatId" db:"chat_id"`
	SenderID    uuid.UUID `json:"senderId" db:"sender_id"`
	RecipientID uuid.UUID `json:"recipientId" db:"recipient_id"`
	Text        string    `json:"text" db:"text"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	IsRead      bool      `json:"isRead" db:"is_read"`
}

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	Chat          *Chat      `json:"chat"`
	Peer          *User      `json:"peer"`
	LastMessage   *Message   `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount   int        `json:"unreadCount"`
}
