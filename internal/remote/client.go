// Package remote is the HTTP client for the DummyJSON-compatible demo service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/manav03panchal/tidytodo/internal/config"
	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
)

// UserAgent is sent with every request.
const UserAgent = "tidytodo/1.0"

// StatusError is a non-2xx response from the demo service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if e.Code >= 500 {
		return fmt.Sprintf("server error (HTTP %d): %s", e.Code, body)
	}
	return fmt.Sprintf("client error (HTTP %d): %s", e.Code, body)
}

// Unwrap makes every status error match ErrRemoteUnavailable, and a 404
// also match ErrNotFound.
func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusNotFound {
		return []error{errors.ErrRemoteUnavailable, errors.ErrNotFound}
	}
	return []error{errors.ErrRemoteUnavailable}
}

// retryable reports whether the status warrants another attempt.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client talks to the demo service. It carries the bearer token of the
// current session.
type Client struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	retryDelay []time.Duration

	mu    sync.RWMutex
	token string
}

// NewClient creates a client from the remote configuration.
func NewClient(cfg config.RemoteConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelays,
	}
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken sets the bearer token. An empty token removes the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

type loginResponse struct {
	model.User
	AccessToken string `json:"accessToken"`
}

// Login authenticates against /auth/login. The service's accessToken is
// normalized into User.Token.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{
		Username:      username,
		Password:      password,
		ExpiresInMins: 60,
	}, &resp)
	if err != nil {
		return nil, err
	}

	user := resp.User
	if user.Token == "" {
		user.Token = resp.AccessToken
	}
	return &user, nil
}

type todoList struct {
	Todos []model.Todo `json:"todos"`
	Total int          `json:"total"`
}

// ListTodos fetches the todos of one owner.
func (c *Client) ListTodos(ctx context.Context, ownerID int64) ([]model.Todo, error) {
	var resp todoList
	if err := c.do(ctx, http.MethodGet, "/todos/user/"+strconv.FormatInt(ownerID, 10), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Todos == nil {
		resp.Todos = []model.Todo{}
	}
	return resp.Todos, nil
}

// CreateTodo sends a create. The service echoes the todo with an id but does
// not keep it.
func (c *Client) CreateTodo(ctx context.Context, todo model.NewTodo) (*model.Todo, error) {
	var resp model.Todo
	if err := c.do(ctx, http.MethodPost, "/todos/add", todo, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTodo sends a partial update.
func (c *Client) UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error) {
	var resp model.Todo
	if err := c.do(ctx, http.MethodPut, "/todos/"+strconv.FormatInt(id, 10), patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTodo sends a delete.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+strconv.FormatInt(id, 10), nil, nil)
}

// do runs one API call with the retry policy and decodes the JSON response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}

	url := c.baseURL + path
	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Wait before retry (except first attempt)
		if attempt > 0 && attempt < len(c.retryDelay) {
			select {
			case <-ctx.Done():
				return errors.Wrap(errors.ErrRemoteUnavailable, ctx.Err().Error())
			case <-time.After(c.retryDelay[attempt]):
			}
		}

		body, err := c.send(ctx, method, url, payload)
		if err == nil {
			logging.DebugContext(ctx, "remote call",
				logging.KeyOperation, method, logging.KeyURL, url,
				"attempts", attempt+1, "duration", time.Since(start))
			if out == nil || len(body) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return errors.Wrapf(errors.ErrRemoteUnavailable, "decode %s response: %v", path, err)
			}
			return nil
		}

		lastErr = err
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	logging.WarnContext(ctx, "remote call failed",
		logging.KeyOperation, method, logging.KeyURL, url, logging.KeyError, lastErr)
	return lastErr
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRemoteUnavailable, "create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(logging.HeaderRequestID, id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRemoteUnavailable, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRemoteUnavailable, "read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
