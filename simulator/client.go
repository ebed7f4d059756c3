package simulator

import (
	"context"
	"fmt"
	"time"

	"yatube/internal/api"
	"yatube/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// apiClient speaks the yatube HTTP API.
type apiClient struct {
	http  *resty.Client
	stats *SimulationStats
}

func newAPIClient(baseURL string, timeout time.Duration, stats *SimulationStats) *apiClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &apiClient{http: client, stats: stats}
}

// call runs one request and records its outcome. Non-2xx replies are errors
// carrying the server's message.
func (c *apiClient) call(ctx context.Context, method, path, token string, body, result interface{}) error {
	var apiErr api.ErrorResponse
	req := c.http.R().SetContext(ctx).SetError(&apiErr)
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode(), apiErr.Error)
	}
	c.stats.recordRequest(time.Since(start), err)
	return err
}

func (c *apiClient) register(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	var out api.LoginResponse
	err := c.call(ctx, resty.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username: username,
		Email:    username + "@sim.local",
		Password: password,
	}, &out)
	return &out, err
}

func (c *apiClient) login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	var out api.LoginResponse
	err := c.call(ctx, resty.MethodPost, "/api/auth/login", "", api.LoginRequest{Username: username, Password: password}, &out)
	return &out, err
}

func (c *apiClient) createGroup(ctx context.Context, token, slug, title string) error {
	return c.call(ctx, resty.MethodPost, "/api/groups", token, api.GroupRequest{
		Title:       title,
		Slug:        slug,
		Description: "Simulated community about " + title,
	}, nil)
}

func (c *apiClient) createPost(ctx context.Context, token, text, group string) (*models.Post, error) {
	var out models.Post
	err := c.call(ctx, resty.MethodPost, "/api/posts", token, api.PostRequest{Text: text, Group: group}, &out)
	return &out, err
}

func (c *apiClient) comment(ctx context.Context, token string, postID uuid.UUID, text string) error {
	return c.call(ctx, resty.MethodPost, "/api/posts/"+postID.String()+"/comments", token, api.CommentRequest{Text: text}, nil)
}

func (c *apiClient) react(ctx context.Context, token string, postID uuid.UUID, kind models.ReactionKind) error {
	return c.call(ctx, resty.MethodPost, "/api/posts/"+postID.String()+"/"+string(kind), token, nil, nil)
}

func (c *apiClient) follow(ctx context.Context, token, username string) error {
	return c.call(ctx, resty.MethodPost, "/api/users/"+username+"/follow", token, nil, nil)
}

func (c *apiClient) sendMessage(ctx context.Context, token, peer, text string) error {
	var chat models.Chat
	if err := c.call(ctx, resty.MethodPost, "/api/chats/"+peer, token, nil, &chat); err != nil {
		return err
	}
	return c.call(ctx, resty.MethodPost, "/api/chats/"+chat.ID.String()+"/messages", token, api.MessageRequest{Text: text}, nil)
}

func (c *apiClient) feed(ctx context.Context, token string) (*models.Page[*models.Post], error) {
	var out models.Page[*models.Post]
	err := c.call(ctx, resty.MethodGet, "/api/feed", token, nil, &out)
	return &out, err
}

func (c *apiClient) badges(ctx context.Context, token string) (*api.BadgesResponse, error) {
	var out api.BadgesResponse
	err := c.call(ctx, resty.MethodGet, "/api/badges", token, nil, &out)
	return &out, err
}
