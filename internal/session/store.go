// Package session holds the authenticated identity and the login, register
// and logout flows that change it.
package session

import (
	"sync"
	"time"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/storage"
)

// Store holds at most one active session, persisted in the durable store.
type Store struct {
	repo *storage.SessionRepo

	mu        sync.RWMutex
	user      *model.User
	listeners map[int]func(*model.User)
	nextID    int
}

// NewStore creates an empty store. Call Load to restore a saved session.
func NewStore(repo *storage.SessionRepo) *Store {
	return &Store{
		repo:      repo,
		listeners: make(map[int]func(*model.User)),
	}
}

// Load restores the persisted session. A session whose user record does not
// parse is discarded and its keys removed.
func (s *Store) Load() error {
	user, err := s.repo.Get()
	switch {
	case err == nil:
	case storage.IsErrKeyNotFound(err):
		return nil
	case errors.Is(err, errors.ErrLocalStoreCorrupt):
		logging.Warn("stored session unreadable, discarding", logging.KeyError, err)
		return s.repo.Clear()
	default:
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	logging.DebugLog("session restored", logging.KeyOwnerID, user.ID)
	return nil
}

// Current returns a copy of the session user, or nil.
func (s *Store) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Present reports whether a session is active.
func (s *Store) Present() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Set persists user as the active session, replacing any previous one.
func (s *Store) Set(user *model.User) error {
	u := *user
	if err := s.repo.Save(&u); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	s.notify(&u)
	return nil
}

// Clear destroys the session.
func (s *Store) Clear() error {
	if err := s.repo.Clear(); err != nil {
		return err
	}

	s.mu.Lock()
	had := s.user != nil
	s.user = nil
	s.mu.Unlock()

	if had {
		s.notify(nil)
	}
	return nil
}

// Touch records user activity for sessions that outlive one process.
func (s *Store) Touch(at time.Time) error {
	if !s.Present() {
		return nil
	}
	return s.repo.Touch(at)
}

// Expired reports whether more than timeout has passed since the last
// recorded activity. A session with no recorded activity is not expired.
func (s *Store) Expired(now time.Time, timeout time.Duration) (bool, error) {
	if !s.Present() {
		return false, nil
	}
	last, err := s.repo.LastActivity()
	if err != nil || last.IsZero() {
		return false, err
	}
	return now.Sub(last) > timeout, nil
}

// Subscribe registers fn to be called with the new user after every Set and
// with nil after Clear. The returned function unregisters it.
func (s *Store) Subscribe(fn func(*model.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(user *model.User) {
	s.mu.RLock()
	fns := make([]func(*model.User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(user)
	}
}
