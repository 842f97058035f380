package storage

import (
	"encoding/json"
	"time"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
)

// SessionRepo persists the authenticated session under the token and user keys.
type SessionRepo struct {
	kv KV
}

// NewSessionRepo creates a new session repository.
func NewSessionRepo(kv KV) *SessionRepo {
	return &SessionRepo{kv: kv}
}

// Get returns the stored session user, or ErrKeyNotFound when either key is
// absent. A user record that fails to parse yields ErrLocalStoreCorrupt.
func (r *SessionRepo) Get() (*model.User, error) {
	token, err := r.kv.GetBytes(model.KeySessionToken)
	if err != nil {
		return nil, err
	}
	data, err := r.kv.GetBytes(model.KeySessionUser)
	if err != nil {
		return nil, err
	}

	user := &model.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, errors.Wrap(errors.ErrLocalStoreCorrupt, err.Error())
	}
	user.Token = string(token)
	return user, nil
}

// Save stores the session user and its token.
func (r *SessionRepo) Save(user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := r.kv.SetBytes(model.KeySessionToken, []byte(user.Token)); err != nil {
		return wrapWriteError("save session token", err)
	}
	return wrapWriteError("save session user", r.kv.SetBytes(model.KeySessionUser, data))
}

// Clear removes all session keys.
func (r *SessionRepo) Clear() error {
	for _, key := range []string{model.KeySessionToken, model.KeySessionUser, model.KeySessionSeen} {
		if err := r.kv.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Touch records the time of the latest user activity.
func (r *SessionRepo) Touch(at time.Time) error {
	data, err := at.UTC().MarshalText()
	if err != nil {
		return err
	}
	return wrapWriteError("save session activity", r.kv.SetBytes(model.KeySessionSeen, data))
}

// LastActivity returns the time recorded by Touch. A missing or unreadable
// value yields the zero time.
func (r *SessionRepo) LastActivity() (time.Time, error) {
	data, err := r.kv.GetBytes(model.KeySessionSeen)
	if IsErrKeyNotFound(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	var at time.Time
	if err := at.UnmarshalText(data); err != nil {
		return time.Time{}, nil
	}
	return at, nil
}
