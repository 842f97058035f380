package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/tidytodo/internal/config"
	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/remote/demoapi"
)

// Helper to create a client against the in-process demo service.
func setupDemo(t *testing.T) (*Client, *demoapi.Server) {
	t.Helper()
	demo := demoapi.New(nil, nil)
	server := httptest.NewServer(demo)
	t.Cleanup(server.Close)

	cfg := config.DefaultRuntimeConfig().Remote
	cfg.BaseURL = server.URL + "/"
	return NewClient(cfg), demo
}

func clientFor(url string, retries int) *Client {
	cfg := config.DefaultRuntimeConfig().Remote
	cfg.BaseURL = url
	cfg.MaxRetries = retries
	cfg.RetryDelays = []time.Duration{0, time.Millisecond, time.Millisecond}
	return NewClient(cfg)
}

// =============================================================================
// Demo service round trips
// =============================================================================

func TestLogin(t *testing.T) {
	client, _ := setupDemo(t)

	user, err := client.Login(context.Background(), "emilys", "emilyspass")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Emily", user.FirstName)
	assert.NotEmpty(t, user.Token, "accessToken is normalized into Token")

	_, err = client.Login(context.Background(), "emilys", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsRemoteUnavailable(err))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Contains(t, statusErr.Error(), "Invalid credentials")
}

func TestListTodos(t *testing.T) {
	client, _ := setupDemo(t)

	todos, err := client.ListTodos(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, int64(1), todos[0].OwnerID)

	todos, err = client.ListTodos(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	_, err = client.ListTodos(context.Background(), 1700000000000)
	assert.True(t, errors.IsRemoteUnavailable(err), "unknown users are rejected")
}

func TestWritesAreNotPersisted(t *testing.T) {
	client, _ := setupDemo(t)
	ctx := context.Background()

	created, err := client.CreateTodo(ctx, model.NewTodo{Text: "learn go", OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, "learn go", created.Text)
	assert.NotZero(t, created.ID)

	updated, err := client.UpdateTodo(ctx, 1, model.TodoPatch{}.SetCompleted(true))
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	require.NoError(t, client.DeleteTodo(ctx, 2))

	todos, err := client.ListTodos(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
	assert.False(t, todos[0].Completed)
}

func TestUpdateUnknownTodo(t *testing.T) {
	client, _ := setupDemo(t)

	_, err := client.UpdateTodo(context.Background(), 5000, model.TodoPatch{}.SetText("x"))
	require.Error(t, err)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.True(t, errors.IsNotFound(err))

	err = client.DeleteTodo(context.Background(), 5000)
	assert.True(t, errors.IsRemoteUnavailable(err))
}

func TestServiceDown(t *testing.T) {
	client, demo := setupDemo(t)
	demo.SetDown(true)

	_, err := client.ListTodos(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsRemoteUnavailable(err))
	assert.Equal(t, errors.CategoryRetryable, errors.Classify(err))

	demo.SetDown(false)
	_, err = client.ListTodos(context.Background(), 1)
	assert.NoError(t, err)
}

// =============================================================================
// Transport behaviour
// =============================================================================

func TestBearerToken(t *testing.T) {
	var auth, agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		agent.Store(r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode(map[string]any{"todos": []model.Todo{}})
	}))
	defer server.Close()

	client := clientFor(server.URL, 0)

	_, err := client.ListTodos(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", auth.Load())
	assert.Equal(t, UserAgent, agent.Load())

	client.SetToken("abc")
	assert.Equal(t, "abc", client.Token())
	_, err = client.ListTodos(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", auth.Load())

	client.SetToken("")
	_, err = client.ListTodos(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", auth.Load())
}

func TestRequestIDHeader(t *testing.T) {
	var got atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get(logging.HeaderRequestID))
		json.NewEncoder(w).Encode(map[string]any{"todos": []model.Todo{}})
	}))
	defer server.Close()

	client := clientFor(server.URL, 0)

	_, err := client.ListTodos(logging.WithRequestID(context.Background(), "req00042"), 1)
	require.NoError(t, err)
	assert.Equal(t, "req00042", got.Load())

	_, err = client.ListTodos(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", got.Load())
}

func TestRetryOnServerError(t *testing.T) {
	attempts := atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("temporary error"))
			return
		}
		w.Write([]byte(`{"todos":[{"id":7,"todo":"x","completed":false,"userId":3}]}`))
	}))
	defer server.Close()

	todos, err := clientFor(server.URL, 2).ListTodos(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestNoRetryByDefault(t *testing.T) {
	attempts := atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := clientFor(server.URL, 0).ListTodos(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	attempts := atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := clientFor(server.URL, 2).ListTodos(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := clientFor(server.URL, 0).ListTodos(ctx, 1)
	require.Error(t, err)
	assert.True(t, errors.IsRemoteUnavailable(err))
}

func TestUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := clientFor(url, 0).ListTodos(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsRemoteUnavailable(err))
}

func TestMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	_, err := clientFor(server.URL, 0).ListTodos(context.Background(), 1)
	assert.True(t, errors.IsRemoteUnavailable(err))
}

func TestStatusErrorMessage(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	err := &StatusError{Code: 502, Body: string(long)}
	assert.Contains(t, err.Error(), "server error (HTTP 502)")
	assert.Contains(t, err.Error(), "...")
	assert.ErrorIs(t, err, errors.ErrRemoteUnavailable)
	assert.NotErrorIs(t, err, errors.ErrNotFound)
}

func TestBaseURLTrimmed(t *testing.T) {
	assert.Equal(t, "http://example.test", clientFor("http://example.test/", 0).BaseURL())
}
