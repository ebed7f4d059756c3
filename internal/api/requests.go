// Package api holds the JSON bodies exchanged over HTTP.
package api

import "yatube/internal/models"

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PostRequest creates or replaces a post. Group is a group slug; empty means
// no group. Image is an object key returned by the upload endpoint.
type PostRequest struct {
	Title    *string `json:"title,omitempty"`
	Text     string  `json:"text"`
	Group    string  `json:"group,omitempty"`
	Image    *string `json:"image,omitempty"`
	IsPinned bool    `json:"isPinned"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type GroupRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

// ProfileRequest changes only the fields that are present.
type ProfileRequest struct {
	Avatar *string `json:"avatar,omitempty"`
	Info   *string `json:"info,omitempty"`
}

// AckRequest lists the event ids to mark read.
type AckRequest = models.EventIDs
