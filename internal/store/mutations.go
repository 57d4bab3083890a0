package store

import (
	"context"
	"time"

	"github.com/nibzard/todos/internal/todo"
)

// Mutations applies changes as load, transform, save and returns the new
// collection. Operations on an id that is not stored leave the backend
// untouched.
type Mutations struct {
	repo    Repository
	factory todo.Factory
}

// NewMutations creates mutations over repo. The factory's clock also stamps
// updates.
func NewMutations(repo Repository, factory todo.Factory) *Mutations {
	return &Mutations{repo: repo, factory: factory}
}

func (m *Mutations) now() time.Time {
	if m.factory.Now == nil {
		return time.Now().UTC()
	}
	return m.factory.Now().UTC()
}

// Add prepends a new todo and returns the collection with it first.
func (m *Mutations) Add(ctx context.Context, title string, deadline time.Time, priority todo.Priority) []todo.Todo {
	todos := m.repo.Load(ctx)
	created := m.factory.New(title, deadline, priority)

	next := make([]todo.Todo, 0, len(todos)+1)
	next = append(next, created)
	next = append(next, todos...)

	m.repo.Save(ctx, next)
	return next
}

// Update merges patch into the todo with id. ok is false when id is absent.
func (m *Mutations) Update(ctx context.Context, id string, patch todo.Patch) (todos []todo.Todo, ok bool) {
	todos = m.repo.Load(ctx)
	i := todo.Index(todos, id)
	if i < 0 {
		return todos, false
	}

	next := todo.Clone(todos)
	next[i] = patch.Apply(next[i], m.now())

	m.repo.Save(ctx, next)
	return next, true
}

// Delete removes the todo with id. ok is false when id is absent.
func (m *Mutations) Delete(ctx context.Context, id string) (todos []todo.Todo, ok bool) {
	todos = m.repo.Load(ctx)
	i := todo.Index(todos, id)
	if i < 0 {
		return todos, false
	}

	next := make([]todo.Todo, 0, len(todos)-1)
	next = append(next, todos[:i]...)
	next = append(next, todos[i+1:]...)

	m.repo.Save(ctx, next)
	return next, true
}

// Toggle flips completion of the todo with id. ok is false when id is absent.
func (m *Mutations) Toggle(ctx context.Context, id string) (todos []todo.Todo, ok bool) {
	todos = m.repo.Load(ctx)
	i := todo.Index(todos, id)
	if i < 0 {
		return todos, false
	}

	completed := !todos[i].Completed
	next := todo.Clone(todos)
	next[i] = todo.Patch{Completed: &completed}.Apply(next[i], m.now())

	m.repo.Save(ctx, next)
	return next, true
}

// Replace stores todos as the whole collection.
func (m *Mutations) Replace(ctx context.Context, todos []todo.Todo) []todo.Todo {
	next := todo.Clone(todos)
	m.repo.Save(ctx, next)
	return next
}
