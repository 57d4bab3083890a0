// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/todos/internal/todo"
)

var envVars = []string{
	"TODOS_STORAGE_BACKEND", "TODOS_DATA_DIR", "TODOS_STORAGE_KEY", "TODOS_SQLITE_PATH",
	"TODOS_REDIS_ADDR", "TODOS_REDIS_PASSWORD", "TODOS_REDIS_DB", "TODOS_LOG_DIR",
	"TODOS_LOG_LEVEL", "TODOS_LOG_FORMAT", "TODOS_LOG_TIMESTAMPS", "TODOS_LOG_CALLER",
	"TODOS_DEFAULT_SORT", "TODOS_DUE_SOON_DAYS", "TODOS_REMINDER_SCHEDULE", "TODOS_IMPORT_STRICT",
}

// setup isolates config discovery and points storage and the journal at a
// fresh working directory.
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range envVars {
		t.Setenv(k, "")
	}
	chdir(t, work)
	t.Setenv("TODOS_DATA_DIR", filepath.Join(work, "data"))
	t.Setenv("TODOS_LOG_DIR", filepath.Join(work, "logs"))
	return work
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("todos %s failed: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

// addedID returns the short id from "Added <id> ..." output.
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "Added" {
		t.Fatalf("unexpected add output: %q", out)
	}
	return fields[1]
}

// TestRun tests the main run function.
func TestRun(t *testing.T) {
	t.Run("shows help with -help and -h", func(t *testing.T) {
		setup(t)
		for _, arg := range []string{"-help", "-h", "help"} {
			out := mustRun(t, arg)
			if !strings.Contains(out, "Commands:") {
				t.Errorf("%s: expected usage, got %q", arg, out)
			}
		}
	})

	t.Run("shows version", func(t *testing.T) {
		setup(t)
		for _, arg := range []string{"-version", "-v", "version"} {
			out := mustRun(t, arg)
			if !strings.Contains(out, "todos version dev") {
				t.Errorf("%s: got %q", arg, out)
			}
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		setup(t)
		_, _, err := runCLI(t, "unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("ls is the default command", func(t *testing.T) {
		setup(t)
		out := mustRun(t)
		if !strings.Contains(out, "No todos yet") {
			t.Errorf("expected empty list, got %q", out)
		}
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		setup(t)
		t.Setenv("TODOS_STORAGE_BACKEND", "etcd")
		_, _, err := runCLI(t, "ls")
		if err == nil || !strings.Contains(err.Error(), "invalid config") {
			t.Errorf("expected invalid config error, got %v", err)
		}
	})
}

func TestTodoLifecycle(t *testing.T) {
	setup(t)

	id := addedID(t, mustRun(t, "add", "Buy", "milk", "-due", "tomorrow", "-priority", "high"))
	if len(id) != 8 {
		t.Errorf("short id = %q, want 8 characters", id)
	}

	out := mustRun(t, "ls")
	for _, want := range []string{"[ ] " + id, "high", "Buy milk", "Showing 1 / 1", "1 pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls output missing %q:\n%s", want, out)
		}
	}

	if out := mustRun(t, "done", id); !strings.HasPrefix(out, "Completed "+id) {
		t.Errorf("toggle output = %q", out)
	}
	if out := mustRun(t, "ls", "pending"); !strings.Contains(out, "No todos match") {
		t.Errorf("pending list should be empty:\n%s", out)
	}
	if out := mustRun(t, "ls", "-status", "completed"); !strings.Contains(out, "[x] "+id) {
		t.Errorf("completed list:\n%s", out)
	}
	if out := mustRun(t, "toggle", id); !strings.HasPrefix(out, "Reopened "+id) {
		t.Errorf("second toggle output = %q", out)
	}

	if out := mustRun(t, "rm", id); !strings.HasPrefix(out, "Deleted "+id) {
		t.Errorf("rm output = %q", out)
	}
	if out := mustRun(t, "ls"); !strings.Contains(out, "No todos yet") {
		t.Errorf("expected empty list after rm:\n%s", out)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	work := setup(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing title", []string{"add", "-due", "tomorrow"}, "title is required"},
		{"missing deadline", []string{"add", "Walk"}, "deadline is required"},
		{"past deadline", []string{"add", "Walk", "-due", "2000-01-01"}, "earlier than today"},
		{"bad priority", []string{"add", "Walk", "-due", "+2", "-priority", "urgent"}, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(work, "data", "todos_app_data.json")); !os.IsNotExist(err) {
		t.Errorf("rejected adds must not write storage, stat err = %v", err)
	}
}

func TestEdit(t *testing.T) {
	setup(t)
	id := addedID(t, mustRun(t, "add", "-title", "Draft", "-due", "+3"))

	out := mustRun(t, "edit", id, "-title", "Final", "-priority", "low")
	if !strings.HasPrefix(out, "Updated "+id+" Final (low,") {
		t.Errorf("edit output = %q", out)
	}

	_, _, err := runCLI(t, "edit", id)
	if err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Errorf("expected nothing to change error, got %v", err)
	}

	_, _, err = runCLI(t, "edit", "zzzzzzzz", "-title", "x")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}

	_, _, err = runCLI(t, "edit", id, "-title", " ")
	if err == nil || !strings.Contains(err.Error(), "title is required") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestExportImport(t *testing.T) {
	work := setup(t)
	mustRun(t, "add", "one", "-due", "+1", "-priority", "high")
	mustRun(t, "add", "two", "-due", "+5", "-priority", "low")
	before := mustRun(t, "ls", "-json")

	t.Run("default file name", func(t *testing.T) {
		out := mustRun(t, "export")
		name := todo.BackupFileName(time.Now())
		if !strings.Contains(out, "Exported 2 todos to "+name) {
			t.Errorf("export output = %q", out)
		}
		if _, err := os.Stat(filepath.Join(work, name)); err != nil {
			t.Errorf("backup not written: %v", err)
		}
	})

	t.Run("stdout", func(t *testing.T) {
		out := mustRun(t, "export", "-o", "-")
		if !strings.HasPrefix(out, "[\n  {") {
			t.Errorf("stdout export is not indented JSON: %q", out)
		}
	})

	backup := filepath.Join(work, "backup.json")
	mustRun(t, "export", "-o", backup)

	mustRun(t, "add", "three", "-due", "+2")

	out := mustRun(t, "import", backup)
	if !strings.Contains(out, "Imported 2 todos") {
		t.Errorf("import output = %q", out)
	}
	if after := mustRun(t, "ls", "-json"); after != before {
		t.Errorf("import did not restore the exported collection\nbefore: %s\nafter: %s", before, after)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	work := setup(t)
	mustRun(t, "add", "keep", "-due", "+1")

	bad := filepath.Join(work, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"todos": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, "import", bad)
	if !errors.Is(err, todo.ErrImportFormat) {
		t.Fatalf("expected ErrImportFormat, got %v", err)
	}
	if out := mustRun(t, "ls"); !strings.Contains(out, "keep") {
		t.Errorf("failed import changed the collection:\n%s", out)
	}
}

func TestDoctor(t *testing.T) {
	t.Run("fresh setup passes", func(t *testing.T) {
		setup(t)
		out := mustRun(t, "doctor")
		for _, want := range []string{"✅ Valid", "✅ Reachable", "Nothing stored yet", "All checks passed"} {
			if !strings.Contains(out, want) {
				t.Errorf("doctor output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("reports stored todos", func(t *testing.T) {
		setup(t)
		mustRun(t, "add", "x", "-due", "+1")
		out := mustRun(t, "doctor", "-v")
		if !strings.Contains(out, "Valid (1 todos)") || !strings.Contains(out, "storage_backend") {
			t.Errorf("doctor -v output:\n%s", out)
		}
	})

	t.Run("corrupt data fails", func(t *testing.T) {
		work := setup(t)
		path := filepath.Join(work, "data", "todos_app_data.json")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
			t.Fatal(err)
		}
		out, _, err := runCLI(t, "doctor")
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Errorf("expected doctor failure, got %v", err)
		}
		if !strings.Contains(out, "Validation failed") {
			t.Errorf("doctor output:\n%s", out)
		}
	})

	t.Run("invalid config is reported, not fatal", func(t *testing.T) {
		setup(t)
		t.Setenv("TODOS_DEFAULT_SORT", "title")
		out, _, err := runCLI(t, "doctor")
		if err == nil {
			t.Error("expected doctor failure")
		}
		if !strings.Contains(out, "default_sort") {
			t.Errorf("doctor output:\n%s", out)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	setup(t)
	t.Setenv("TODOS_DUE_SOON_DAYS", "5")

	out := mustRun(t, "-sort", "priority", "config")
	for _, want := range []string{`"priority"`, "(flag)", `"5"`, "(environment)", "(default)"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}

	if out := mustRun(t, "config", "-example"); !strings.Contains(out, `storage_backend = "file"`) {
		t.Errorf("example config:\n%s", out)
	}
}

func TestTail(t *testing.T) {
	setup(t)
	if out := mustRun(t, "tail"); !strings.Contains(out, "No journal entries") {
		t.Errorf("tail before any change = %q", out)
	}

	mustRun(t, "ls")
	if out := mustRun(t, "tail"); !strings.Contains(out, "No journal entries") {
		t.Errorf("read-only commands must not create a journal: %q", out)
	}

	mustRun(t, "add", "logged", "-due", "+1")
	out := mustRun(t, "tail", "-n", "1")
	if !strings.Contains(out, "Tailing:") || !strings.Contains(out, `"type":"add"`) || !strings.Contains(out, "logged") {
		t.Errorf("tail output:\n%s", out)
	}
}

func TestWatchOnce(t *testing.T) {
	setup(t)
	mustRun(t, "add", "soon", "-due", "today")
	mustRun(t, "add", "later", "-due", "+30")

	out := mustRun(t, "watch", "-once")
	if strings.TrimSpace(out) != "0 overdue, 1 due soon" {
		t.Errorf("watch output = %q", out)
	}

	_, _, err := runCLI(t, "watch", "-schedule", "whenever")
	if err == nil {
		t.Error("expected invalid schedule error")
	}
}

func TestMemoryBackend(t *testing.T) {
	setup(t)
	mustRun(t, "-backend", "memory", "add", "gone", "-due", "+1")
	if out := mustRun(t, "-backend", "memory", "ls"); !strings.Contains(out, "No todos yet") {
		t.Errorf("memory backend should start empty each run:\n%s", out)
	}
}

func TestSQLiteBackend(t *testing.T) {
	work := setup(t)
	db := filepath.Join(work, "db", "todos.db")
	id := addedID(t, mustRun(t, "-backend", "sqlite", "-sqlite-path", db, "add", "persisted", "-due", "+1"))
	out := mustRun(t, "-backend", "sqlite", "-sqlite-path", db, "ls")
	if !strings.Contains(out, id) || !strings.Contains(out, "persisted") {
		t.Errorf("sqlite ls:\n%s", out)
	}
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2026, 3, 30, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want string
	}{
		{"today", "2026-03-30"},
		{"Tomorrow", "2026-03-31"},
		{"+0", "2026-03-30"},
		{"+3", "2026-04-02"},
		{"+7d", "2026-04-06"},
		{" 2026-05-01 ", "2026-05-01"},
		{"+x", "+x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := resolveDate(tt.in, now); got != tt.want {
				t.Errorf("resolveDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	due := fs.String("due", "", "")
	high := fs.Bool("high", false, "")

	rest, err := parseInterspersed(fs, []string{"Buy", "-due", "today", "oat", "milk", "-high"})
	if err != nil {
		t.Fatalf("parseInterspersed() error = %v", err)
	}
	if strings.Join(rest, " ") != "Buy oat milk" {
		t.Errorf("positional = %v", rest)
	}
	if *due != "today" || !*high {
		t.Errorf("flags = %q %v", *due, *high)
	}

	if _, err := parseInterspersed(fs, []string{"-nope"}); err == nil {
		t.Error("expected error for unknown flag")
	}

	t.Run("terminator ends flag parsing", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		due := fs.String("due", "", "")

		rest, err := parseInterspersed(fs, []string{"fix", "-due", "today", "--", "-v", "flag", "--"})
		if err != nil {
			t.Fatalf("parseInterspersed() error = %v", err)
		}
		if got := strings.Join(rest, " "); got != "fix -v flag --" {
			t.Errorf("positional = %q, want %q", got, "fix -v flag --")
		}
		if *due != "today" {
			t.Errorf("due = %q, want today", *due)
		}
	})
}

func TestAddTitleAfterTerminator(t *testing.T) {
	setup(t)
	out := mustRun(t, "add", "-due", "tomorrow", "--", "fix", "-v", "flag")
	if !strings.Contains(out, "fix -v flag (medium") {
		t.Errorf("add output = %q, want title %q", out, "fix -v flag")
	}
}

// chdir changes into dir and restores the previous working directory when
// the test finishes (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
