package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/todos/internal/config"
	"github.com/nibzard/todos/internal/kv"
	"github.com/nibzard/todos/internal/logging"
	"github.com/nibzard/todos/internal/store"
	"github.com/nibzard/todos/internal/todo"
)

// doctorCommand checks config, storage reachability, stored data and the
// journal directory.
func (a *app) doctorCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos doctor", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	out := a.out
	fmt.Fprintln(out, "todos doctor")
	fmt.Fprintln(out, "============")
	fmt.Fprintln(out)

	allOK := true

	// Check config
	fmt.Fprintln(out, "Config:")
	for _, f := range []struct{ label, path string }{
		{"User file", a.cws.UserFile},
		{"Project file", a.cws.ProjectFile},
		{".env", a.cws.DotEnvFile},
	} {
		if f.path != "" {
			fmt.Fprintf(out, "  %s: %s\n", f.label, f.path)
		}
	}
	if *verbose {
		writeConfigValues(out, a.cws, "  ")
	}
	if err := a.cfg.Validate(); err != nil {
		for _, e := range splitErrors(err) {
			fmt.Fprintf(out, "  ❌ %v\n", e)
		}
		allOK = false
	} else {
		fmt.Fprintln(out, "  ✅ Valid")
	}
	fmt.Fprintln(out)

	// Check storage
	opts := a.cfg.KVOptions()
	fmt.Fprintf(out, "Storage: %s\n", kv.Describe(opts))
	s, err := kv.Open(ctx, opts)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		defer s.Close()
		fmt.Fprintln(out, "  ✅ Reachable")
		if strings.EqualFold(a.cfg.StorageBackend, kv.BackendMemory) {
			fmt.Fprintln(out, "  ⚠️  Memory backend keeps nothing between runs")
		}
		fmt.Fprintln(out)

		repo := store.NewAdapter(s, a.cfg.StorageKey, a.logger)
		fmt.Fprintf(out, "Data: key %s\n", repo.Key())
		if !a.checkData(ctx, repo, *verbose) {
			allOK = false
		}
	}
	fmt.Fprintln(out)

	// Check journal
	logDir, err := logging.FindJournalDir(a.cfg.LogDir, a.cfg.DataLocation())
	if err != nil {
		fmt.Fprintf(out, "Journal: %s\n", a.cfg.LogDir)
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(out, "Journal: %s\n", logDir)
		runs, err := logging.FindLogRuns(logDir)
		switch {
		case err != nil:
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
			allOK = false
		case len(runs) == 0:
			fmt.Fprintln(out, "  ⚠️  No entries yet (created on the first change)")
		default:
			fmt.Fprintf(out, "  ✅ %d runs, latest %s\n", len(runs), runs[0].RunID)
		}
	}
	fmt.Fprintln(out)

	if allOK {
		fmt.Fprintln(out, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(out, "⚠️  Some checks failed. todos may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkData validates the raw stored value against the todo schema.
func (a *app) checkData(ctx context.Context, repo *store.Adapter, verbose bool) bool {
	out := a.out
	data, found, err := repo.Raw(ctx)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Read error: %v\n", err)
		return false
	}
	if !found {
		fmt.Fprintln(out, "  ⚠️  Nothing stored yet")
		return true
	}

	result := todo.Validate(data, todo.ValidationOptions{Strict: true})
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  ⚠️  %s\n", w)
	}
	if !result.Valid {
		fmt.Fprintln(out, "  ❌ Validation failed (the app will start with an empty list):")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "     - %v\n", e)
		}
		return false
	}

	todos, err := todo.Decode(data)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Decode error: %v\n", err)
		return false
	}
	fmt.Fprintf(out, "  ✅ Valid (%d todos)\n", len(todos))
	if verbose {
		for _, t := range todos {
			check := "[ ]"
			if t.Completed {
				check = "[x]"
			}
			fmt.Fprintf(out, "    - %s %s %s\n", check, todo.ShortID(t.ID), t.Title)
		}
	}
	return true
}

// configCommand prints the effective configuration with the source of each
// value, or an example config file.
func (a *app) configCommand(args []string) error {
	fs := flag.NewFlagSet("todos config", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	example := fs.Bool("example", false, "Print an example config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *example {
		fmt.Fprint(a.out, config.ExampleConfig())
		return nil
	}
	writeConfigValues(a.out, a.cws, "")
	return nil
}

func writeConfigValues(w io.Writer, cws *config.ConfigWithSources, indent string) {
	width := 0
	for _, field := range config.ConfigFields() {
		width = max(width, len(field))
	}
	for _, field := range config.ConfigFields() {
		fmt.Fprintf(w, "%s%-*s = %-24q (%s)\n", indent, width, field, cws.Config.Value(field), cws.Sources[field])
	}
}

// splitErrors unpacks errors.Join results.
func splitErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
