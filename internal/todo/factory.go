package todo

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock func() time.Time

// IDFunc returns a fresh todo id.
type IDFunc func() string

// NewID returns a UUIDv7 string: a millisecond Unix timestamp followed by
// random bits. Falls back to a random v4 if the v7 generator fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ShortID returns the last eight characters of id. UUIDv7 ids share their
// leading timestamp digits, so the tail is the part worth showing.
func ShortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}

// Factory constructs new todos.
type Factory struct {
	Now   Clock
	NewID IDFunc
}

// DefaultFactory uses the wall clock and UUIDv7 ids.
func DefaultFactory() Factory {
	return Factory{Now: time.Now, NewID: NewID}
}

// New creates a todo with a trimmed title, a fresh id and
// CreatedAt == UpdatedAt == now. An empty priority becomes DefaultPriority.
func (f Factory) New(title string, deadline time.Time, priority Priority) Todo {
	now := f.now()
	if priority == "" {
		priority = DefaultPriority
	}
	return Todo{
		ID:        f.id(),
		Title:     strings.TrimSpace(title),
		Deadline:  deadline.UTC(),
		Priority:  priority,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f Factory) now() time.Time {
	if f.Now == nil {
		return time.Now().UTC()
	}
	return f.Now().UTC()
}

func (f Factory) id() string {
	if f.NewID == nil {
		return NewID()
	}
	return f.NewID()
}
