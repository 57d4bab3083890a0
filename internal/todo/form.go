package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the layout of deadline dates entered by users.
const DateLayout = "2006-01-02"

// Draft is unvalidated user input for creating or editing a todo.
type Draft struct {
	Title    string
	Deadline string // YYYY-MM-DD
	Priority string
}

// Input is validated, normalized form input.
type Input struct {
	Title    string
	Deadline time.Time
	Priority Priority
}

// Patch returns a patch that sets every field of the input.
func (in Input) Patch() Patch {
	title := in.Title
	deadline := in.Deadline
	priority := in.Priority
	return Patch{Title: &title, Deadline: &deadline, Priority: &priority}
}

// FieldErrors maps form field names to messages.
type FieldErrors map[string]string

// Error lists field errors in a stable order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return strings.Join(parts, "; ")
}

// DraftFrom fills a draft from an existing todo, for editing.
func DraftFrom(t Todo) Draft {
	return Draft{
		Title:    t.Title,
		Deadline: t.Deadline.UTC().Format(DateLayout),
		Priority: string(t.Priority),
	}
}

// Validate checks the draft against the form rules and normalizes it.
// The deadline must not be earlier than today in now's location and is
// normalized to the end of that day in UTC.
func (d Draft) Validate(now time.Time) (Input, error) {
	errs := FieldErrors{}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		errs["title"] = "title is required"
	}

	var deadline time.Time
	raw := strings.TrimSpace(d.Deadline)
	if raw == "" {
		errs["deadline"] = "deadline is required"
	} else {
		date, err := time.Parse(DateLayout, raw)
		if err != nil {
			errs["deadline"] = fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw)
		} else if date.Before(startOfDay(now)) {
			errs["deadline"] = "deadline cannot be earlier than today"
		} else {
			deadline = EndOfDay(date)
		}
	}

	priority := DefaultPriority
	if strings.TrimSpace(d.Priority) != "" {
		p, err := ParsePriority(d.Priority)
		if err != nil {
			errs["priority"] = err.Error()
		} else {
			priority = p
		}
	}

	if len(errs) > 0 {
		return Input{}, errs
	}
	return Input{Title: title, Deadline: deadline, Priority: priority}, nil
}

// EndOfDay returns 23:59:59.999 UTC on the calendar date of t.
func EndOfDay(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// startOfDay returns today's calendar date as UTC midnight, so it compares
// directly with dates parsed from DateLayout.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
