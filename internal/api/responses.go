package api

import (
	"time"

	"yatube/internal/models"
)

// LoginResponse is returned by both register and login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// ErrorResponse is the body of every non-2xx reply. Fields and Input are set
// for validation failures so a client can redisplay its form.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Input  interface{}       `json:"input,omitempty"`
}

type HealthResponse struct {
	Status     string    `json:"status"`
	Users      int       `json:"users"`
	Posts      int       `json:"posts"`
	ServerTime time.Time `json:"serverTime"`
}

// BadgesResponse carries the two unread counters shown in the navigation bar.
type BadgesResponse struct {
	Events   int `json:"events"`
	Messages int `json:"messages"`
}

type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
