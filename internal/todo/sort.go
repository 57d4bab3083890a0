package todo

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the display order.
type SortKey string

const (
	SortCreated  SortKey = "created"
	SortDeadline SortKey = "deadline"
	SortPriority SortKey = "priority"
)

// SortKeys lists the sort keys in menu order.
func SortKeys() []SortKey {
	return []SortKey{SortCreated, SortDeadline, SortPriority}
}

// ParseSortKey parses a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case SortCreated, SortDeadline, SortPriority:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key %q, must be one of: created, deadline, priority", s)
}

// Sort returns a new slice ordered by key. The input is not modified and
// items with equal keys keep their relative order. Unknown keys sort by
// creation time like SortCreated.
func Sort(todos []Todo, key SortKey) []Todo {
	sorted := Clone(todos)

	switch key {
	case SortDeadline:
		// Soonest deadline first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Deadline.Before(sorted[j].Deadline)
		})
	case SortPriority:
		// High priority first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Priority.Rank() < sorted[j].Priority.Rank()
		})
	default:
		// Newest first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	}

	return sorted
}
