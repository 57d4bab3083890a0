package todo

import (
	"fmt"
	"math"
	"time"
)

// DefaultDueSoonDays is the due-soon window in days.
const DefaultDueSoonDays = 3

const day = 24 * time.Hour

// DaysUntil returns the number of days until deadline, rounded up.
// Past deadlines yield zero or negative values.
func DaysUntil(deadline, now time.Time) int {
	diff := deadline.Sub(now)
	return int(math.Ceil(float64(diff) / float64(day)))
}

// Overdue reports whether t is past its deadline and not completed.
func Overdue(t Todo, now time.Time) bool {
	return t.Deadline.Before(now) && !t.Completed
}

// DueSoon reports whether t is not completed and its deadline is within
// DefaultDueSoonDays days.
func DueSoon(t Todo, now time.Time) bool {
	return DueWithin(t, now, DefaultDueSoonDays)
}

// DueWithin reports whether t is not completed and 0 <= DaysUntil <= days.
func DueWithin(t Todo, now time.Time, days int) bool {
	if t.Completed {
		return false
	}
	d := DaysUntil(t.Deadline, now)
	return d >= 0 && d <= days
}

// DueLabel describes the deadline relative to now.
func DueLabel(t Todo, now time.Time) string {
	d := DaysUntil(t.Deadline, now)
	switch {
	case d < 0:
		return fmt.Sprintf("overdue by %d %s", -d, plural(-d, "day", "days"))
	case d == 0:
		return "due today"
	case d == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", d)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
