package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nibzard/todos/internal/todo"
)

func (a *app) exportCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos export", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	output := fs.String("o", "", "Destination file, - for stdout (default todos-backup-YYYY-MM-DD.json)")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 1 {
		return fmt.Errorf("unexpected arguments: %v", rest[1:])
	}
	if len(rest) == 1 && *output == "" {
		*output = rest[0]
	}

	ws, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	dest := *output
	if dest == "" {
		dest = todo.BackupFileName(ws.sess.Now())
	}
	if dest == "-" {
		return ws.sess.Export(a.out, "stdout")
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := ws.sess.Export(f, dest); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	fmt.Fprintf(a.out, "Exported %s\n", ws.sess.Notice().Detail)
	return nil
}

func (a *app) importCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todos import", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	strict := fs.Bool("strict", a.cfg.ImportStrict, "Reject files with schema findings")

	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("import takes exactly one file (- for stdin)")
	}
	a.cfg.ImportStrict = *strict

	path := rest[0]
	var r io.Reader = a.in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	ws, err := a.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	result, err := ws.sess.Import(ctx, r)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(a.errOut, "warning: %s\n", w)
	}
	fmt.Fprintf(a.out, "Imported %d todos from %s\n", len(result.Todos), path)
	return nil
}
