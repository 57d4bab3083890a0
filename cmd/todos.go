package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nibzard/todos/internal/session"
	"github.com/nibzard/todos/internal/todo"
)

func (a *app) lsCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos ls", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	status := fs.String("status", "", "Filter by status (all|pending|completed)")
	priority := fs.String("priority", "", "Filter by priority (all|high|medium|low)")
	sortBy := fs.String("sort", "", "Sort order (created|deadline|priority)")
	asJSON := fs.Bool("json", false, "Print the listed todos as JSON")
	long := fs.Bool("l", false, "Show full ids and timestamps")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return fmt.Errorf("unexpected arguments: %v", rest[1:])
	}
	if len(rest) == 1 && *status == "" {
		*status = rest[0]
	}

	statusFilter, err := todo.ParseStatusFilter(*status)
	if err != nil {
		return err
	}
	priorityFilter, err := todo.ParsePriorityFilter(*priority)
	if err != nil {
		return err
	}

	ws, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	if *sortBy != "" {
		key, err := todo.ParseSortKey(*sortBy)
		if err != nil {
			return err
		}
		ws.sess.SetSort(key)
	}
	ws.sess.SetFilter(todo.Filter{Status: statusFilter, Priority: priorityFilter})

	v := ws.sess.View(ws.sess.Now())
	if *asJSON {
		return todo.Export(a.out, v.Items)
	}
	printList(a.out, v, *long)
	return nil
}

func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos add", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	title := fs.String("title", "", "Title")
	due := fs.String("due", "", "Deadline (YYYY-MM-DD, today, tomorrow or +N)")
	priority := fs.String("priority", "", "Priority (high|medium|low)")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	text := *title
	if text == "" {
		text = strings.Join(rest, " ")
	} else if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %v", rest)
	}

	ws, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	draft := todo.Draft{
		Title:    text,
		Deadline: resolveDate(*due, ws.sess.Now()),
		Priority: *priority,
	}
	created, err := ws.sess.Add(ctx, draft)
	if err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}

	fmt.Fprintf(a.out, "Added %s %s (%s, due %s)\n",
		todo.ShortID(created.ID), created.Title, created.Priority, created.Deadline.UTC().Format(todo.DateLayout))
	return nil
}

func (a *app) editCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos edit", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	title := fs.String("title", "", "New title")
	due := fs.String("due", "", "New deadline (YYYY-MM-DD, today, tomorrow or +N)")
	priority := fs.String("priority", "", "New priority (high|medium|low)")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("edit takes exactly one todo id")
	}

	ws, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	id, err := ws.sess.Resolve(rest[0])
	if err != nil {
		return err
	}
	draft, err := ws.sess.StartEdit(id)
	if err != nil {
		return err
	}

	changed := false
	now := ws.sess.Now()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			draft.Title = *title
		case "due":
			draft.Deadline = resolveDate(*due, now)
		case "priority":
			draft.Priority = *priority
		default:
			return
		}
		changed = true
	})
	if !changed {
		ws.sess.CancelEdit()
		return fmt.Errorf("nothing to change, use -title, -due or -priority")
	}

	updated, err := ws.sess.SubmitEdit(ctx, draft)
	if err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}
	fmt.Fprintf(a.out, "Updated %s %s (%s, due %s)\n",
		todo.ShortID(updated.ID), updated.Title, updated.Priority, updated.Deadline.UTC().Format(todo.DateLayout))
	return nil
}

func (a *app) toggleCommand(ctx context.Context, args []string) error {
	ws, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ids, err := resolveAll(ws.sess, args)
	if err != nil {
		return err
	}
	for _, id := range ids {
		t, err := ws.sess.Toggle(ctx, id)
		if err != nil {
			return err
		}
		verb := "Reopened"
		if t.Completed {
			verb = "Completed"
		}
		fmt.Fprintf(a.out, "%s %s %s\n", verb, todo.ShortID(t.ID), t.Title)
	}
	return nil
}

func (a *app) rmCommand(ctx context.Context, args []string) error {
	ws, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ids, err := resolveAll(ws.sess, args)
	if err != nil {
		return err
	}
	for _, id := range ids {
		t, err := ws.sess.Delete(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted %s %s\n", todo.ShortID(t.ID), t.Title)
	}
	return nil
}

func printList(w io.Writer, v session.View, long bool) {
	if v.Total == 0 {
		fmt.Fprintln(w, "No todos yet. Add one with: todos add <title> -due <date>")
		return
	}
	if v.Shown == 0 {
		fmt.Fprintln(w, "No todos match the filter.")
	} else {
		for _, t := range v.Items {
			printTodo(w, t, v.Now, long)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Showing %d / %d | %d completed, %d pending, %d overdue\n",
		v.Shown, v.Total, v.Stats.Completed, v.Stats.Pending, v.Stats.Overdue)
}

func printTodo(w io.Writer, t todo.Todo, now time.Time, long bool) {
	check := "[ ]"
	note := todo.DueLabel(t, now)
	if t.Completed {
		check = "[x]"
		note = "done"
	}

	fmt.Fprintf(w, "  %s %s  %-6s  %s  %s (%s)\n",
		check, todo.ShortID(t.ID), t.Priority, t.Deadline.UTC().Format(todo.DateLayout), t.Title, note)

	if long {
		fmt.Fprintf(w, "      id: %s\n", t.ID)
		fmt.Fprintf(w, "      created: %s  updated: %s\n",
			t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339))
	}
}
