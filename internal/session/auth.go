package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/storage"
)

// MockTokenPrefix marks tokens issued to locally registered accounts.
const MockTokenPrefix = "mock_token_"

// DefaultAvatar is the image given to registered accounts.
const DefaultAvatar = "https://via.placeholder.com/150"

// Remote is the subset of the demo client used for authentication.
type Remote interface {
	Login(ctx context.Context, username, password string) (*model.User, error)
	SetToken(token string)
}

// Authenticator runs the login, register and logout flows.
type Authenticator struct {
	store  *Store
	remote Remote
	users  *storage.MockUserRepo
	now    func() time.Time
}

// NewAuthenticator creates an authenticator. The remote client's bearer
// token follows the session.
func NewAuthenticator(store *Store, remote Remote, users *storage.MockUserRepo) *Authenticator {
	a := &Authenticator{
		store:  store,
		remote: remote,
		users:  users,
		now:    time.Now,
	}
	if u := store.Current(); u != nil {
		remote.SetToken(u.Token)
	}
	return a
}

// Login tries the remote service first, then locally registered accounts.
// A rejected login is (false, nil); errors are reserved for storage failures.
func (a *Authenticator) Login(ctx context.Context, username, password string) (bool, error) {
	log := logging.LoggerFromContext(ctx).With(logging.KeyUsername, username)

	user, err := a.remote.Login(ctx, username, password)
	if err == nil && user.Token != "" {
		if err := a.start(user); err != nil {
			return false, err
		}
		log.Info("logged in", "via", "remote")
		return true, nil
	}
	if err != nil {
		log.Debug("remote login failed, trying local accounts", logging.KeyError, err)
	}

	mock, err := a.users.FindByCredentials(username, password)
	if storage.IsErrKeyNotFound(err) {
		log.Info("login rejected")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := a.start(&mock.User); err != nil {
		return false, err
	}
	log.Info("logged in", "via", "local")
	return true, nil
}

// Register creates a local account and logs it in. The demo service does
// not support account creation, so nothing is sent remotely.
func (a *Authenticator) Register(ctx context.Context, data model.RegisterData) (bool, error) {
	data.Username = strings.TrimSpace(data.Username)
	if data.Username == "" || data.Password == "" {
		return false, errors.NewUserErrorWithField("username", data.Username,
			"username and password are required", "Provide both a username and a password.")
	}

	existing, err := a.users.List()
	if err != nil {
		return false, err
	}
	id := a.now().UnixMilli()
	for _, u := range existing {
		if u.Username == data.Username {
			return false, &errors.UserError{
				Message:    "username already registered",
				Field:      "username",
				Value:      data.Username,
				Suggestion: "Log in with 'tidytodo login " + data.Username + "' or pick another username.",
				Cause:      errors.ErrAuthFailed,
			}
		}
		id = max(id, u.ID+1)
	}

	mock := model.MockUser{
		User: model.User{
			ID:        id,
			Username:  data.Username,
			Email:     data.Email,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Gender:    "other",
			Image:     DefaultAvatar,
			Token:     MockTokenPrefix + uuid.NewString(),
		},
		Password: data.Password,
	}
	if err := a.users.Add(mock); err != nil {
		return false, err
	}
	if err := a.start(&mock.User); err != nil {
		return false, err
	}

	logging.LoggerFromContext(ctx).Info("registered local account",
		logging.KeyUsername, mock.Username, logging.KeyOwnerID, mock.ID)
	return true, nil
}

// Logout destroys the session and drops the bearer token.
func (a *Authenticator) Logout() error {
	a.remote.SetToken("")
	return a.store.Clear()
}

func (a *Authenticator) start(user *model.User) error {
	if err := a.store.Set(user); err != nil {
		return err
	}
	a.remote.SetToken(user.Token)
	return a.store.Touch(a.now())
}
