// Package reminder periodically scans the collection and logs overdue and
// due-soon todos.
package reminder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/nibzard/todos/internal/store"
	"github.com/nibzard/todos/internal/todo"
)

// DefaultSchedule runs the scan every hour.
const DefaultSchedule = "@every 1h"

// ParseSchedule checks a five-field cron expression or a descriptor such as
// "@hourly" or "@every 30m".
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

// Report is the result of one scan.
type Report struct {
	At      time.Time
	Overdue []todo.Todo
	DueSoon []todo.Todo
}

// Empty reports whether nothing needs attention.
func (r Report) Empty() bool {
	return len(r.Overdue) == 0 && len(r.DueSoon) == 0
}

// Scan classifies pending todos at now. A todo is reported once: overdue
// wins over due soon. Both lists are ordered by deadline.
func Scan(todos []todo.Todo, now time.Time, days int) Report {
	r := Report{At: now}
	for _, t := range todos {
		switch {
		case todo.Overdue(t, now):
			r.Overdue = append(r.Overdue, t)
		case todo.DueWithin(t, now, days):
			r.DueSoon = append(r.DueSoon, t)
		}
	}
	byDeadline := func(xs []todo.Todo) {
		sort.SliceStable(xs, func(i, j int) bool {
			return xs[i].Deadline.Before(xs[j].Deadline)
		})
	}
	byDeadline(r.Overdue)
	byDeadline(r.DueSoon)
	return r
}

// Watcher runs Scan on a cron schedule.
type Watcher struct {
	repo     store.Repository
	logger   *log.Logger
	schedule string
	days     int
	now      todo.Clock
	location *time.Location
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClock sets the clock used for scans.
func WithClock(c todo.Clock) Option {
	return func(w *Watcher) { w.now = c }
}

// WithLocation sets the time zone cron expressions are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(w *Watcher) { w.location = loc }
}

// NewWatcher creates a watcher. An empty schedule uses DefaultSchedule and a
// non-positive window uses todo.DefaultDueSoonDays.
func NewWatcher(repo store.Repository, logger *log.Logger, schedule string, days int, opts ...Option) *Watcher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if days <= 0 {
		days = todo.DefaultDueSoonDays
	}
	if logger == nil {
		logger = log.Default()
	}
	w := &Watcher{
		repo:     repo,
		logger:   logger,
		schedule: schedule,
		days:     days,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// RunOnce loads the collection, scans it and logs one line per todo that
// needs attention.
func (w *Watcher) RunOnce(ctx context.Context) Report {
	now := w.now()
	r := Scan(w.repo.Load(ctx), now, w.days)

	for _, t := range r.Overdue {
		w.logger.Warn("Overdue", "title", t.Title, "priority", t.Priority, "due", todo.DueLabel(t, now), "id", t.ID)
	}
	for _, t := range r.DueSoon {
		w.logger.Info("Due soon", "title", t.Title, "priority", t.Priority, "due", todo.DueLabel(t, now), "id", t.ID)
	}
	if r.Empty() {
		w.logger.Debug("Nothing due")
	}
	return r
}

// Run scans once immediately, then on every tick of the schedule until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := ParseSchedule(w.schedule); err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(w.location))
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}

	w.logger.Info("Watching for due todos", "schedule", w.schedule, "window_days", w.days)
	w.RunOnce(ctx)

	c.Start()
	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}
