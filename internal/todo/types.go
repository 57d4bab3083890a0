// Package todo defines todo records and the pure logic around them.
package todo

import (
	"fmt"
	"strings"
	"time"
)

// Priority represents a todo priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is used when no priority is given.
const DefaultPriority = PriorityMedium

// Priorities lists all priorities in rank order.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank returns the sort rank of the priority. High is 1, low is 3.
// Unknown priorities sort after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ParsePriority parses a priority name. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q, must be one of: high, medium, low", s)
	}
	return p, nil
}

// Todo is a single task record.
type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Deadline  time.Time `json:"deadline"`
	Priority  Priority  `json:"priority"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsZero returns true if the todo is empty (has no ID).
func (t *Todo) IsZero() bool {
	return t.ID == ""
}

// Equal reports whether two todos carry the same field values.
// Timestamps are compared as instants.
func (t Todo) Equal(o Todo) bool {
	return t.ID == o.ID &&
		t.Title == o.Title &&
		t.Deadline.Equal(o.Deadline) &&
		t.Priority == o.Priority &&
		t.Completed == o.Completed &&
		t.CreatedAt.Equal(o.CreatedAt) &&
		t.UpdatedAt.Equal(o.UpdatedAt)
}

// Patch holds the fields an update may change. Nil fields are left as they
// are. ID and CreatedAt are never patchable.
type Patch struct {
	Title     *string
	Deadline  *time.Time
	Priority  *Priority
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Deadline == nil && p.Priority == nil && p.Completed == nil
}

// Apply returns a copy of t with the patch merged in and UpdatedAt set to now.
func (p Patch) Apply(t Todo, now time.Time) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Deadline != nil {
		t.Deadline = p.Deadline.UTC()
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = nextUpdate(t, now)
	return t
}

// nextUpdate keeps UpdatedAt strictly increasing and never before CreatedAt,
// even when the clock has not moved since the last mutation.
func nextUpdate(t Todo, now time.Time) time.Time {
	now = now.UTC()
	floor := t.UpdatedAt
	if t.CreatedAt.After(floor) {
		floor = t.CreatedAt
	}
	if !now.After(floor) {
		return floor.Add(time.Millisecond)
	}
	return now
}

// Index returns the position of the todo with the given id, or -1.
func Index(todos []Todo, id string) int {
	for i := range todos {
		if todos[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the todo with the given id, or nil if not found.
func Find(todos []Todo, id string) *Todo {
	if i := Index(todos, id); i >= 0 {
		return &todos[i]
	}
	return nil
}

// Clone returns a copy of the collection. A nil input yields an empty,
// non-nil slice so it serializes as [].
func Clone(todos []Todo) []Todo {
	out := make([]Todo, len(todos))
	copy(out, todos)
	return out
}
