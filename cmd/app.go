package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todos/internal/config"
	"github.com/nibzard/todos/internal/kv"
	"github.com/nibzard/todos/internal/logging"
	"github.com/nibzard/todos/internal/session"
	"github.com/nibzard/todos/internal/store"
	"github.com/nibzard/todos/internal/todo"
)

// app carries what every command needs.
type app struct {
	cfg    *config.Config
	cws    *config.ConfigWithSources
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *log.Logger

	// factory overrides todo.DefaultFactory in tests.
	factory *todo.Factory
}

// workspace is an opened session plus the resources behind it.
type workspace struct {
	sess    *session.Session
	kv      kv.Store
	journal *logging.LazyJournal
	logger  *log.Logger
}

func (w *workspace) Close() {
	if p := w.journal.Path(); p != "" {
		w.logger.Debug("Journal written", "path", p)
	}
	if err := w.journal.Close(); err != nil {
		w.logger.Warn("Failed to close journal", "err", err)
	}
	if err := w.kv.Close(); err != nil {
		w.logger.Warn("Failed to close store", "err", err)
	}
}

// openStore connects to the configured backend.
func (a *app) openStore(ctx context.Context) (kv.Store, error) {
	s, err := kv.Open(ctx, a.cfg.KVOptions())
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", kv.Describe(a.cfg.KVOptions()), err)
	}
	return s, nil
}

// open loads the collection into a new session. logger replaces the console
// logger when not nil.
func (a *app) open(ctx context.Context, logger *log.Logger) (*workspace, error) {
	if logger == nil {
		logger = a.logger
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	factory := todo.DefaultFactory()
	if a.factory != nil {
		factory = *a.factory
	}
	sortKey, err := todo.ParseSortKey(a.cfg.DefaultSort)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	repo := store.NewAdapter(s, a.cfg.StorageKey, logger)
	journal := logging.NewLazyJournal(a.cfg.LogDir, a.cfg.DataLocation())
	sess := session.New(session.Options{
		Repo:         repo,
		Factory:      factory,
		Logger:       logger,
		Journal:      logging.NewMultiWriter(journal, logging.NewConsoleWriter(logger)),
		Sort:         sortKey,
		ImportStrict: a.cfg.ImportStrict,
		DueSoonDays:  a.cfg.DueSoonDays,
	})
	sess.Open(ctx)

	return &workspace{sess: sess, kv: s, journal: journal, logger: logger}, nil
}

// resolveAll maps id references to stored ids, failing on the first miss.
func resolveAll(sess *session.Session, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("at least one todo id is required")
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := sess.Resolve(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments and returns the positional ones. Everything after a
// "--" terminator is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// resolveDate turns the deadline shortcuts today, tomorrow and +N into a
// YYYY-MM-DD date in now's location. Anything else is returned unchanged
// for form validation to judge.
func resolveDate(s string, now time.Time) string {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "today":
		return now.Format(todo.DateLayout)
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(todo.DateLayout)
	}
	if rest, ok := strings.CutPrefix(v, "+"); ok {
		rest = strings.TrimSuffix(rest, "d")
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
			return now.AddDate(0, 0, n).Format(todo.DateLayout)
		}
	}
	return strings.TrimSpace(s)
}
