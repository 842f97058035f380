package todo

import (
	"context"
	"strconv"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/storage"
	"github.com/manav03panchal/tidytodo/internal/validate"
)

// Remote is the demo service as seen by the shim.
type Remote interface {
	ListTodos(ctx context.Context, ownerID int64) ([]model.Todo, error)
	CreateTodo(ctx context.Context, todo model.NewTodo) (*model.Todo, error)
	UpdateTodo(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}

// Local holds the per-owner fallback collections.
type Local interface {
	List(ownerID int64) ([]model.Todo, error)
	Mutate(ownerID int64, fn storage.MutateFunc) (corrupt error, err error)
	Owners() ([]int64, error)
}

// Service is the todo persistence shim.
type Service struct {
	remote   Remote
	local    Local
	classify Classifier
	ids      *IDSource
}

// NewService creates a shim over remote and local storage.
func NewService(remote Remote, local Local, classify Classifier) *Service {
	return &Service{
		remote:   remote,
		local:    local,
		classify: classify,
		ids:      NewIDSource(),
	}
}

// Classifier returns the routing thresholds in use.
func (s *Service) Classifier() Classifier {
	return s.classify
}

// List returns an owner's todos. The demo owner gets the remote collection
// followed by its local collection. A mock owner gets the same merge, or
// only the local collection when the remote call fails. Any other owner
// gets the remote collection or the remote error.
func (s *Service) List(ctx context.Context, owner int64) ([]model.Todo, error) {
	ctx = logging.WithOwner(ctx, owner)
	log := logging.LoggerFromContext(ctx)

	remote, err := s.remote.ListTodos(ctx, owner)
	if err != nil {
		if s.classify.IsMockOwner(owner) {
			log.Debug("remote list failed, using local collection", logging.KeyError, err)
			return s.loadLocal(ctx, owner), nil
		}
		return nil, errors.Wrapf(err, "list todos for owner %d", owner)
	}

	if !s.classify.StoresLocally(owner) {
		return remote, nil
	}

	local := s.loadLocal(ctx, owner)
	todos := make([]model.Todo, 0, len(remote)+len(local))
	todos = append(todos, remote...)
	todos = append(todos, local...)
	log.Debug("listed todos", "remote", len(remote), "local", len(local))
	return todos, nil
}

// loadLocal reads a collection, treating corrupt data as empty.
func (s *Service) loadLocal(ctx context.Context, owner int64) []model.Todo {
	todos, err := s.local.List(owner)
	if err != nil {
		logging.WarnContext(logging.WithOwner(ctx, owner), "local collection unreadable, treating as empty",
			logging.KeyError, err)
		return []model.Todo{}
	}
	return todos
}

// Create adds a todo. Demo and mock owners get a locally generated id and the
// todo is appended to their local collection; the remote service is not
// called. Other owners' creates go to the remote service.
func (s *Service) Create(ctx context.Context, owner int64, text string, completed bool) (*model.Todo, error) {
	text = validate.SanitizeTodoText(text)
	if err := validate.TodoText(text); err != nil {
		return nil, err
	}

	if !s.classify.StoresLocally(owner) {
		created, err := s.remote.CreateTodo(ctx, model.NewTodo{Text: text, Completed: completed, OwnerID: owner})
		if err != nil {
			return nil, errors.Wrap(err, "create todo")
		}
		return created, nil
	}

	ctx = logging.WithOwner(ctx, owner)
	var created model.Todo
	corrupt, err := s.local.Mutate(owner, func(todos []model.Todo) ([]model.Todo, bool) {
		var highest int64
		for _, t := range todos {
			highest = max(highest, t.ID)
		}
		created = model.Todo{
			ID:        s.ids.Next(highest),
			Text:      text,
			Completed: completed,
			OwnerID:   owner,
		}
		return append(todos, created), true
	})
	s.logCorrupt(ctx, owner, corrupt)
	if err != nil {
		return nil, errors.Wrap(err, "create todo")
	}

	logging.DebugContext(ctx, "created local todo", logging.KeyTodoID, created.ID)
	return &created, nil
}

// Update applies a partial update. Local collections are searched first; an
// id found there is updated in place without a remote call. A local-origin id
// found nowhere is ErrNotFound. Everything else goes to the remote service.
func (s *Service) Update(ctx context.Context, id int64, patch model.TodoPatch) (*model.Todo, error) {
	var updated model.Todo
	found, err := s.mutateAnywhere(ctx, id, func(todos []model.Todo, i int) []model.Todo {
		todos[i] = patch.Apply(todos[i])
		updated = todos[i]
		return todos
	})
	if err != nil {
		return nil, errors.Wrap(err, "update todo")
	}
	if found {
		return &updated, nil
	}

	if err := s.checkRemoteRoutable(id); err != nil {
		return nil, err
	}
	result, err := s.remote.UpdateTodo(ctx, id, patch)
	if err != nil {
		return nil, errors.Wrapf(err, "update todo %d", id)
	}
	return result, nil
}

// Delete removes a todo, routed the same way as Update.
func (s *Service) Delete(ctx context.Context, id int64) error {
	found, err := s.mutateAnywhere(ctx, id, func(todos []model.Todo, i int) []model.Todo {
		return append(todos[:i], todos[i+1:]...)
	})
	if err != nil {
		return errors.Wrap(err, "delete todo")
	}
	if found {
		return nil
	}

	if err := s.checkRemoteRoutable(id); err != nil {
		return err
	}
	if err := s.remote.DeleteTodo(ctx, id); err != nil {
		return errors.Wrapf(err, "delete todo %d", id)
	}
	return nil
}

func (s *Service) checkRemoteRoutable(id int64) error {
	if s.classify.ClassifyTodoID(id) != OriginLocal {
		return nil
	}
	return &errors.UserError{
		Message:    "todo not found",
		Field:      "id",
		Value:      strconv.FormatInt(id, 10),
		Suggestion: errors.Suggestion(errors.ErrNotFound),
		Cause:      errors.ErrNotFound,
	}
}

// mutateAnywhere scans every owner's collection for id and applies edit to
// the first match, under that owner's lock.
func (s *Service) mutateAnywhere(ctx context.Context, id int64, edit func(todos []model.Todo, i int) []model.Todo) (bool, error) {
	owners, err := s.local.Owners()
	if err != nil {
		return false, err
	}

	for _, owner := range owners {
		found := false
		corrupt, err := s.local.Mutate(owner, func(todos []model.Todo) ([]model.Todo, bool) {
			for i := range todos {
				if todos[i].ID == id {
					found = true
					return edit(todos, i), true
				}
			}
			return todos, false
		})
		s.logCorrupt(ctx, owner, corrupt)
		if err != nil {
			return false, err
		}
		if found {
			logging.DebugContext(logging.WithOwner(ctx, owner), "local todo changed",
				logging.KeyTodoID, id, logging.KeyOrigin, OriginLocal.String())
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) logCorrupt(ctx context.Context, owner int64, corrupt error) {
	if corrupt == nil {
		return
	}
	logging.WarnContext(logging.WithOwner(ctx, owner), "local collection unreadable, treating as empty",
		logging.KeyError, corrupt)
}
