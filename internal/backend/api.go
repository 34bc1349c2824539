package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
)

// Login exchanges management credentials for a profile and bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var res AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &res)
	return res, err
}

// Signup registers a company and returns the freshly issued session.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (AuthResponse, error) {
	var res AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", "", req, &res)
	return res, err
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", "", req, nil)
}

// Logout tells the backend to revoke the token. Best-effort: the local
// purge happens regardless of the outcome.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) ForgotInvisiboxEmail(ctx context.Context, req ForgotInvisiboxEmailRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-invisibox-email", "", req, nil)
}

func (c *Client) VerifyInvisiboxEmail(ctx context.Context, req VerifyInvisiboxEmailRequest) (VerifyInvisiboxEmailResponse, error) {
	var res VerifyInvisiboxEmailResponse
	err := c.do(ctx, http.MethodPost, "/employees/verify-invisibox-email", "", req, &res)
	return res, err
}

func (c *Client) Subscribe(ctx context.Context, req SubscribeRequest) error {
	return c.do(ctx, http.MethodPost, "/employees/subscribe", "", req, nil)
}

func (c *Client) Unsubscribe(ctx context.Context, req UnsubscribeRequest) error {
	return c.do(ctx, http.MethodPost, "/employees/unsubscribe", "", req, nil)
}

func (c *Client) SendAnonymousMessage(ctx context.Context, req SendAnonymousMessageRequest) error {
	return c.do(ctx, http.MethodPost, "/employees/send-anonymous-message", "", req, nil)
}

func (c *Client) Dashboard(ctx context.Context, token string) (DashboardStats, error) {
	var res DashboardStats
	err := c.do(ctx, http.MethodGet, "/dashboard", token, nil, &res)
	return res, err
}

func (c *Client) Subscribers(ctx context.Context, token string) ([]Subscriber, error) {
	var res []Subscriber
	err := c.do(ctx, http.MethodGet, "/subscribers", token, nil, &res)
	return res, err
}

func (c *Client) WarnSubscriber(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/subscribers/"+id.String()+"/warn", token, nil, nil)
}

func (c *Client) BanSubscriber(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/subscribers/"+id.String()+"/ban", token, nil, nil)
}

func (c *Client) Messages(ctx context.Context, token string) ([]Message, error) {
	var res []Message
	err := c.do(ctx, http.MethodGet, "/messages", token, nil, &res)
	return res, err
}

func (c *Client) CreatePoll(ctx context.Context, token string, req CreatePollRequest) (Poll, error) {
	var res Poll
	err := c.do(ctx, http.MethodPost, "/polls", token, req, &res)
	return res, err
}

func (c *Client) DeletePoll(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/polls/"+id.String(), token, nil, nil)
}

// SharePollResult uploads a rendered result chart alongside its title and
// question as a multipart form.
func (c *Client) SharePollResult(ctx context.Context, token, title, question, filename string, image io.Reader) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("title", title); err != nil {
		return fmt.Errorf("backend: write title field: %w", err)
	}
	if err := form.WriteField("question", question); err != nil {
		return fmt.Errorf("backend: write question field: %w", err)
	}

	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("backend: create image part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return fmt.Errorf("backend: copy image: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("backend: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/polls/share-result", &buf)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.send(req, "/polls/share-result", token, nil)
}
