// Package store persists the todo collection in a key-value backend and
// implements the load-transform-save mutations on top of it.
package store

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todos/internal/kv"
	"github.com/nibzard/todos/internal/todo"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "todos_app_data"

// Repository loads and saves the whole collection. Implementations never
// return errors: failures are logged and degrade to an empty load or a
// dropped save.
type Repository interface {
	Load(ctx context.Context) []todo.Todo
	Save(ctx context.Context, todos []todo.Todo)
}

// Adapter is a Repository over a kv.Store.
type Adapter struct {
	kv     kv.Store
	key    string
	logger *log.Logger
}

// NewAdapter creates an adapter. An empty key uses DefaultKey.
func NewAdapter(store kv.Store, key string, logger *log.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{kv: store, key: key, logger: logger}
}

// Key returns the storage key.
func (a *Adapter) Key() string {
	return a.key
}

// Raw returns the stored bytes as they are.
func (a *Adapter) Raw(ctx context.Context) ([]byte, bool, error) {
	return a.kv.Get(ctx, a.key)
}

// Load returns the stored collection, or an empty one when nothing is stored
// or the stored value cannot be read.
func (a *Adapter) Load(ctx context.Context) []todo.Todo {
	data, found, err := a.kv.Get(ctx, a.key)
	if err != nil {
		a.logger.Error("Failed to load todos", "key", a.key, "err", err)
		return []todo.Todo{}
	}
	if !found {
		return []todo.Todo{}
	}

	todos, err := todo.Decode(data)
	if err != nil {
		a.logger.Error("Failed to load todos", "key", a.key, "err", err)
		return []todo.Todo{}
	}
	return todos
}

// Save replaces the stored collection. Failures are logged and the write is
// dropped.
func (a *Adapter) Save(ctx context.Context, todos []todo.Todo) {
	data, err := todo.Encode(todos)
	if err != nil {
		a.logger.Error("Failed to save todos", "key", a.key, "err", err)
		return
	}
	if err := a.kv.Set(ctx, a.key, data); err != nil {
		a.logger.Error("Failed to save todos", "key", a.key, "err", err)
		return
	}
	a.logger.Debug("Saved todos", "key", a.key, "count", len(todos))
}
