package storage

import (
	"encoding/json"

	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
)

// MockUserRepo stores locally registered accounts as one JSON array.
type MockUserRepo struct {
	kv KV
}

// NewMockUserRepo creates a new mock user repository.
func NewMockUserRepo(kv KV) *MockUserRepo {
	return &MockUserRepo{kv: kv}
}

// List returns all registered mock users. Unparseable data reads as empty.
func (r *MockUserRepo) List() ([]model.MockUser, error) {
	data, err := r.kv.GetBytes(model.KeyMockUsers)
	if IsErrKeyNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var users []model.MockUser
	if err := json.Unmarshal(data, &users); err != nil {
		logging.Warn("mock users unreadable, treating as empty", logging.KeyError, err)
		return nil, nil
	}
	return users, nil
}

// Add appends a user to the registry.
func (r *MockUserRepo) Add(user model.MockUser) error {
	users, err := r.List()
	if err != nil {
		return err
	}
	users = append(users, user)

	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return wrapWriteError("save mock users", r.kv.SetBytes(model.KeyMockUsers, data))
}

// FindByCredentials returns the user with matching username and password.
func (r *MockUserRepo) FindByCredentials(username, password string) (*model.MockUser, error) {
	users, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username && users[i].Password == password {
			return &users[i], nil
		}
	}
	return nil, ErrKeyNotFound
}

// UsernameTaken reports whether a mock user already uses username.
func (r *MockUserRepo) UsernameTaken(username string) (bool, error) {
	users, err := r.List()
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}
