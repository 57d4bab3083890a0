package todo

import (
	"fmt"
	"strings"
	"time"
)

// StatusFilter narrows a collection by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPending   StatusFilter = "pending"
	StatusCompleted StatusFilter = "completed"
)

// StatusFilters lists the status filters in menu order.
func StatusFilters() []StatusFilter {
	return []StatusFilter{StatusAll, StatusPending, StatusCompleted}
}

// ParseStatusFilter parses a status filter name. Empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	f := StatusFilter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusCompleted:
		return f, nil
	}
	return "", fmt.Errorf("invalid status filter %q, must be one of: all, pending, completed", s)
}

// Filter composes a status predicate and a priority predicate with AND.
// An empty Priority matches every priority.
type Filter struct {
	Status   StatusFilter
	Priority Priority
}

// ParsePriorityFilter parses a priority filter. "all" and "" match any
// priority and are returned as the empty Priority.
func ParsePriorityFilter(s string) (Priority, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == "all" {
		return "", nil
	}
	return ParsePriority(v)
}

// Match reports whether t passes both predicates.
func (f Filter) Match(t Todo) bool {
	switch f.Status {
	case StatusPending:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Apply returns the todos that match, in input order.
func (f Filter) Apply(todos []Todo) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Result is a filtered and sorted view of a collection.
type Result struct {
	Items []Todo
	Shown int
	Total int
}

// Query filters and then sorts todos.
func Query(todos []Todo, f Filter, key SortKey) Result {
	items := Sort(f.Apply(todos), key)
	return Result{
		Items: items,
		Shown: len(items),
		Total: len(todos),
	}
}

// Stats summarizes a collection.
type Stats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
}

// Summarize counts todos by state at the given instant.
func Summarize(todos []Todo, now time.Time) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		}
		if Overdue(t, now) {
			s.Overdue++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
