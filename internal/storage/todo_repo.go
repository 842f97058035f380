package storage

import (
	"encoding/json"
	"sync"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
)

// LocalTodoRepo stores one ordered todo collection per owner. Every
// read-modify-write on an owner's collection holds that owner's lock.
type LocalTodoRepo struct {
	kv KV

	mu     sync.Mutex
	owners map[int64]*sync.Mutex
}

// NewLocalTodoRepo creates a new local todo repository.
func NewLocalTodoRepo(kv KV) *LocalTodoRepo {
	return &LocalTodoRepo{
		kv:     kv,
		owners: make(map[int64]*sync.Mutex),
	}
}

func (r *LocalTodoRepo) ownerLock(ownerID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.owners[ownerID]
	if !ok {
		l = &sync.Mutex{}
		r.owners[ownerID] = l
	}
	return l
}

// List returns an owner's collection. A missing collection is empty. If the
// stored data does not parse, List returns an empty collection together with
// an error wrapping ErrLocalStoreCorrupt.
func (r *LocalTodoRepo) List(ownerID int64) ([]model.Todo, error) {
	l := r.ownerLock(ownerID)
	l.Lock()
	defer l.Unlock()

	return r.load(ownerID)
}

func (r *LocalTodoRepo) load(ownerID int64) ([]model.Todo, error) {
	data, err := r.kv.GetBytes(model.LocalTodosKey(ownerID))
	if IsErrKeyNotFound(err) {
		return []model.Todo{}, nil
	}
	if err != nil {
		return nil, err
	}

	var todos []model.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return []model.Todo{}, errors.Wrapf(errors.ErrLocalStoreCorrupt, "owner %d: %v", ownerID, err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

func (r *LocalTodoRepo) save(ownerID int64, todos []model.Todo) error {
	data, err := json.Marshal(todos)
	if err != nil {
		return err
	}
	return wrapWriteError("save local todos", r.kv.SetBytes(model.LocalTodosKey(ownerID), data))
}

// MutateFunc receives the current collection and returns the new one and
// whether it should be written back.
type MutateFunc func(todos []model.Todo) ([]model.Todo, bool)

// Mutate runs fn under the owner's lock and persists its result. Corrupt
// stored data is handed to fn as an empty collection; the corruption error is
// returned alongside a nil write error so callers can log it.
func (r *LocalTodoRepo) Mutate(ownerID int64, fn MutateFunc) (corrupt error, err error) {
	l := r.ownerLock(ownerID)
	l.Lock()
	defer l.Unlock()

	todos, loadErr := r.load(ownerID)
	if loadErr != nil {
		if !errors.Is(loadErr, errors.ErrLocalStoreCorrupt) {
			return nil, loadErr
		}
		corrupt = loadErr
	}

	updated, write := fn(todos)
	if !write {
		return corrupt, nil
	}
	return corrupt, r.save(ownerID, updated)
}

// Owners returns the ids of every owner with a local collection.
func (r *LocalTodoRepo) Owners() ([]int64, error) {
	keys, err := r.kv.ListByPrefix(model.PrefixLocalTodos + ":")
	if err != nil {
		return nil, err
	}

	owners := make([]int64, 0, len(keys))
	for _, key := range keys {
		if id, ok := model.OwnerFromLocalTodosKey(key); ok {
			owners = append(owners, id)
		}
	}
	return owners, nil
}
