// Package demoapi is an in-process stand-in for the DummyJSON demo service.
// Like the real service it accepts writes but never keeps them.
package demoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
)

// Account is a user known to the demo service.
type Account struct {
	model.User
	Password string
}

// DefaultAccounts mirrors the first DummyJSON users.
var DefaultAccounts = []Account{
	{User: model.User{ID: 1, Username: "emilys", Email: "emily.johnson@x.dummyjson.com", FirstName: "Emily", LastName: "Johnson", Gender: "female"}, Password: "emilyspass"},
	{User: model.User{ID: 2, Username: "michaelw", Email: "michael.williams@x.dummyjson.com", FirstName: "Michael", LastName: "Williams", Gender: "male"}, Password: "michaelwpass"},
}

// DefaultTodos are the seeded todos.
var DefaultTodos = []model.Todo{
	{ID: 1, Text: "Do something nice for someone you care about", Completed: false, OwnerID: 1},
	{ID: 2, Text: "Memorize a poem", Completed: true, OwnerID: 1},
	{ID: 3, Text: "Watch a classic movie", Completed: true, OwnerID: 2},
}

// Server serves the demo API.
type Server struct {
	router   *mux.Router
	accounts []Account
	todos    []model.Todo

	mu   sync.RWMutex
	down bool

	calls atomic.Int64
}

// New creates a server seeded with accounts and todos. Nil slices use the
// defaults.
func New(accounts []Account, todos []model.Todo) *Server {
	if accounts == nil {
		accounts = DefaultAccounts
	}
	if todos == nil {
		todos = DefaultTodos
	}

	s := &Server{
		accounts: accounts,
		todos:    todos,
	}
	s.router = s.newRouter()
	return s
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countAndLog)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/todos/user/{id:[0-9]+}", s.handleListTodos).Methods("GET")
	r.HandleFunc("/todos/add", s.handleAddTodo).Methods("POST")
	r.HandleFunc("/todos/{id:[0-9]+}", s.handleUpdateTodo).Methods("PUT", "PATCH")
	r.HandleFunc("/todos/{id:[0-9]+}", s.handleDeleteTodo).Methods("DELETE")
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetDown makes every API route answer 503 until called with false.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

// Calls returns the number of requests served, health checks excluded.
func (s *Server) Calls() int64 {
	return s.calls.Load()
}

func (s *Server) countAndLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		s.calls.Add(1)
		id := r.Header.Get(logging.HeaderRequestID)
		if id != "" {
			w.Header().Set(logging.HeaderRequestID, id)
		}
		logging.DebugLog("demo api request",
			logging.KeyRequestID, id, logging.KeyOperation, r.Method, logging.KeyURL, r.URL.Path)

		s.mu.RLock()
		down := s.down
		s.mu.RUnlock()
		if down {
			writeMessage(w, http.StatusServiceUnavailable, "Service unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	model.User
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password required")
		return
	}

	for _, acc := range s.accounts {
		if acc.Username == req.Username && acc.Password == req.Password {
			user := acc.User
			user.Token = ""
			writeJSON(w, http.StatusOK, loginResponse{
				User:         user,
				AccessToken:  "demo_access_" + uuid.NewString(),
				RefreshToken: "demo_refresh_" + uuid.NewString(),
			})
			return
		}
	}
	writeMessage(w, http.StatusBadRequest, "Invalid credentials")
}

type todoList struct {
	Todos []model.Todo `json:"todos"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	owner, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	todos := []model.Todo{}
	for _, t := range s.todos {
		if t.OwnerID == owner {
			todos = append(todos, t)
		}
	}
	if len(todos) == 0 && !s.knownUser(owner) {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("User with id '%d' not found", owner))
		return
	}
	writeJSON(w, http.StatusOK, todoList{Todos: todos, Total: len(todos), Limit: len(todos)})
}

func (s *Server) knownUser(id int64) bool {
	for _, acc := range s.accounts {
		if acc.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) handleAddTodo(w http.ResponseWriter, r *http.Request) {
	var req model.NewTodo
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" || req.OwnerID == 0 {
		writeMessage(w, http.StatusBadRequest, "Todo and userId are required")
		return
	}

	// Echo with the next id; the todo is not stored.
	writeJSON(w, http.StatusCreated, model.Todo{
		ID:        int64(len(s.todos) + 1),
		Text:      req.Text,
		Completed: req.Completed,
		OwnerID:   req.OwnerID,
	})
}

func (s *Server) find(r *http.Request) (model.Todo, bool) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	for _, t := range s.todos {
		if t.ID == id {
			return t, true
		}
	}
	return model.Todo{ID: id}, false
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := s.find(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Todo with id '%d' not found", todo.ID))
		return
	}

	var patch model.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, patch.Apply(todo))
}

type deletedTodo struct {
	model.Todo
	IsDeleted bool   `json:"isDeleted"`
	DeletedOn string `json:"deletedOn"`
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	todo, ok := s.find(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Todo with id '%d' not found", todo.ID))
		return
	}
	writeJSON(w, http.StatusOK, deletedTodo{
		Todo:      todo,
		IsDeleted: true,
		DeletedOn: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// ListenAndServe serves the demo API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
