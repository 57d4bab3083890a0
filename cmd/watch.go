package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/nibzard/todos/internal/logging"
	"github.com/nibzard/todos/internal/reminder"
	"github.com/nibzard/todos/internal/store"
	"github.com/nibzard/todos/internal/ui"
)

// tuiCommand launches the TUI.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos tui", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// The alternate screen owns the terminal; failures surface as notices.
	ws, err := a.open(ctx, logging.Discard())
	if err != nil {
		return err
	}
	defer ws.Close()

	return ui.RunTUI(ctx, ws.sess)
}

// watchCommand logs overdue and due-soon todos on the reminder schedule.
func (a *app) watchCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos watch", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	once := fs.Bool("once", false, "Scan once and exit")
	schedule := fs.String("schedule", a.cfg.ReminderSchedule, "Cron expression or @every <duration>")
	days := fs.Int("days", a.cfg.DueSoonDays, "Due-soon window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *days < 0 {
		return fmt.Errorf("days must not be negative, got %d", *days)
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	repo := store.NewAdapter(s, a.cfg.StorageKey, a.logger)
	w := reminder.NewWatcher(repo, a.logger, *schedule, *days)

	if *once {
		r := w.RunOnce(ctx)
		fmt.Fprintf(a.out, "%d overdue, %d due soon\n", len(r.Overdue), len(r.DueSoon))
		return nil
	}
	return w.Run(ctx)
}

func (a *app) tailCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos tail", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	follow := fs.Bool("f", false, "Follow the journal (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the journal (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindJournalDir(a.cfg.LogDir, a.cfg.DataLocation())
	if err != nil {
		return fmt.Errorf("finding journal directory: %w", err)
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest journal: %w", err)
	}

	if logPath == "" {
		fmt.Fprintln(a.out, "No journal entries found.")
		return nil
	}

	fmt.Fprintf(a.out, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(a.out, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(a.out)

	return logging.TailLog(ctx, a.out, logPath, *n, *follow)
}
