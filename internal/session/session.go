// Package session owns the in-memory todo collection and the view state
// around it (editing target, filter, sort and the last notice). Every change
// goes through the store's mutations so memory and storage stay in step.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todos/internal/logging"
	"github.com/nibzard/todos/internal/store"
	"github.com/nibzard/todos/internal/todo"
)

var (
	// ErrNotFound is returned when no todo has the requested id.
	ErrNotFound = errors.New("todo not found")
	// ErrAmbiguous is returned when an id prefix matches several todos.
	ErrAmbiguous = errors.New("ambiguous todo id")
	// ErrNotEditing is returned by SubmitEdit when no edit is in progress.
	ErrNotEditing = errors.New("no todo is being edited")
)

// NoticeKind classifies a notice.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is the feedback for the last user action.
type Notice struct {
	Kind   NoticeKind
	Title  string
	Detail string
}

// IsError reports whether the notice reports a failure.
func (n Notice) IsError() bool {
	return n.Kind == NoticeError
}

// Options configures a Session.
type Options struct {
	Repo         store.Repository
	Factory      todo.Factory
	Logger       *log.Logger
	Journal      logging.EventWriter
	Sort         todo.SortKey
	Filter       todo.Filter
	ImportStrict bool
	DueSoonDays  int
}

// Session holds the collection shown to the user.
type Session struct {
	mut          *store.Mutations
	repo         store.Repository
	clock        todo.Clock
	logger       *log.Logger
	journal      logging.EventWriter
	importStrict bool
	dueSoonDays  int

	todos   []todo.Todo
	editing string
	filter  todo.Filter
	sort    todo.SortKey
	notice  Notice
}

// New creates a session. Call Open to load the collection.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	clock := opts.Factory.Now
	if clock == nil {
		clock = time.Now
	}
	sortKey := opts.Sort
	if sortKey == "" {
		sortKey = todo.SortCreated
	}
	filter := opts.Filter
	if filter.Status == "" {
		filter.Status = todo.StatusAll
	}
	days := opts.DueSoonDays
	if days <= 0 {
		days = todo.DefaultDueSoonDays
	}
	return &Session{
		mut:          store.NewMutations(opts.Repo, opts.Factory),
		repo:         opts.Repo,
		clock:        clock,
		logger:       logger,
		journal:      logging.Normalize(opts.Journal),
		importStrict: opts.ImportStrict,
		dueSoonDays:  days,
		todos:        []todo.Todo{},
		filter:       filter,
		sort:         sortKey,
	}
}

// Open loads the collection from storage.
func (s *Session) Open(ctx context.Context) {
	s.todos = s.repo.Load(ctx)
	s.logger.Debug("Loaded todos", "count", len(s.todos))
}

// Refresh reloads the collection from storage.
func (s *Session) Refresh(ctx context.Context) {
	s.Open(ctx)
	s.info("Refreshed", plural(len(s.todos), "todo"))
}

// Todos returns a copy of the collection in storage order.
func (s *Session) Todos() []todo.Todo {
	return todo.Clone(s.todos)
}

// Notice returns the feedback for the last action.
func (s *Session) Notice() Notice {
	return s.notice
}

// Editing returns the id being edited, or "".
func (s *Session) Editing() string {
	return s.editing
}

// Filter returns the active filter.
func (s *Session) Filter() todo.Filter {
	return s.filter
}

// SetFilter replaces the active filter.
func (s *Session) SetFilter(f todo.Filter) {
	if f.Status == "" {
		f.Status = todo.StatusAll
	}
	s.filter = f
}

// Sort returns the active sort key.
func (s *Session) Sort() todo.SortKey {
	return s.sort
}

// SetSort replaces the active sort key.
func (s *Session) SetSort(key todo.SortKey) {
	s.sort = key
}

// DueSoonDays returns the due-soon window in days.
func (s *Session) DueSoonDays() int {
	return s.dueSoonDays
}

// Resolve maps a full id, a unique id prefix or a unique id suffix (as
// printed by todo.ShortID) to a stored id.
func (s *Session) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNotFound
	}
	if todo.Index(s.todos, ref) >= 0 {
		return ref, nil
	}
	match := ""
	for _, t := range s.todos {
		if !strings.HasPrefix(t.ID, ref) && !strings.HasSuffix(t.ID, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %q", ErrAmbiguous, ref)
		}
		match = t.ID
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return match, nil
}

// Add validates draft and prepends a new todo. Invalid input returns
// todo.FieldErrors and storage is not touched.
func (s *Session) Add(ctx context.Context, draft todo.Draft) (todo.Todo, error) {
	in, err := draft.Validate(s.clock())
	if err != nil {
		s.fail("Invalid todo", err)
		return todo.Todo{}, err
	}

	s.todos = s.mut.Add(ctx, in.Title, in.Deadline, in.Priority)
	created := s.todos[0]
	s.record(logging.EventAdd, created, "")
	s.info("Todo added", created.Title)
	return created, nil
}

// StartEdit marks id as being edited and returns its current values.
func (s *Session) StartEdit(id string) (todo.Draft, error) {
	t := todo.Find(s.todos, id)
	if t == nil {
		err := fmt.Errorf("%w: %q", ErrNotFound, id)
		s.fail("Cannot edit", err)
		return todo.Draft{}, err
	}
	s.editing = id
	return todo.DraftFrom(*t), nil
}

// CancelEdit leaves edit mode without changes.
func (s *Session) CancelEdit() {
	s.editing = ""
}

// SubmitEdit validates draft and applies it to the todo being edited. A
// deadline left at its current date is accepted even if that date has
// passed. On validation failure edit mode is kept.
func (s *Session) SubmitEdit(ctx context.Context, draft todo.Draft) (todo.Todo, error) {
	if s.editing == "" {
		s.fail("Cannot save", ErrNotEditing)
		return todo.Todo{}, ErrNotEditing
	}
	current := todo.Find(s.todos, s.editing)
	if current == nil {
		id := s.editing
		s.editing = ""
		err := fmt.Errorf("%w: %q", ErrNotFound, id)
		s.fail("Cannot save", err)
		return todo.Todo{}, err
	}

	now := s.clock()
	if strings.TrimSpace(draft.Deadline) == current.Deadline.UTC().Format(todo.DateLayout) &&
		current.Deadline.Before(now) {
		now = current.Deadline
	}
	in, err := draft.Validate(now)
	if err != nil {
		s.fail("Invalid todo", err)
		return todo.Todo{}, err
	}

	id := s.editing
	todos, ok := s.mut.Update(ctx, id, in.Patch())
	s.todos = todos
	s.editing = ""
	if !ok {
		err := fmt.Errorf("%w: %q", ErrNotFound, id)
		s.fail("Cannot save", err)
		return todo.Todo{}, err
	}

	updated := *todo.Find(s.todos, id)
	s.record(logging.EventUpdate, updated, "")
	s.info("Todo updated", updated.Title)
	return updated, nil
}

// Delete removes the todo with id.
func (s *Session) Delete(ctx context.Context, id string) (todo.Todo, error) {
	var removed todo.Todo
	if t := todo.Find(s.todos, id); t != nil {
		removed = *t
	}

	todos, ok := s.mut.Delete(ctx, id)
	s.todos = todos
	if !ok {
		err := fmt.Errorf("%w: %q", ErrNotFound, id)
		s.fail("Cannot delete", err)
		return todo.Todo{}, err
	}
	if s.editing == id {
		s.editing = ""
	}

	if removed.ID == "" {
		removed.ID = id
	}
	s.record(logging.EventDelete, removed, "")
	s.info("Todo deleted", removed.Title)
	return removed, nil
}

// Toggle flips completion of the todo with id.
func (s *Session) Toggle(ctx context.Context, id string) (todo.Todo, error) {
	todos, ok := s.mut.Toggle(ctx, id)
	s.todos = todos
	if !ok {
		err := fmt.Errorf("%w: %q", ErrNotFound, id)
		s.fail("Cannot toggle", err)
		return todo.Todo{}, err
	}

	t := *todo.Find(s.todos, id)
	state := "pending"
	title := "Marked pending"
	if t.Completed {
		state = "completed"
		title = "Marked completed"
	}
	s.record(logging.EventToggle, t, state)
	s.info(title, t.Title)
	return t, nil
}

// Export writes the in-memory collection to w. dest names the destination
// for the journal and notice.
func (s *Session) Export(w io.Writer, dest string) error {
	if err := todo.Export(w, s.todos); err != nil {
		s.fail("Export failed", err)
		return err
	}
	detail := plural(len(s.todos), "todo")
	if dest != "" {
		detail += " to " + dest
	}
	s.record(logging.EventExport, todo.Todo{}, detail)
	s.info("Exported", detail)
	return nil
}

// Import reads an exported collection from r and replaces both storage and
// memory with it. On any failure the current state is kept.
func (s *Session) Import(ctx context.Context, r io.Reader) (*todo.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		err = fmt.Errorf("read import: %w", err)
		s.fail("Import failed", err)
		return nil, err
	}

	result, err := todo.Import(data, todo.ValidationOptions{Strict: s.importStrict})
	if err != nil {
		s.fail("Import failed", err)
		return nil, err
	}
	for _, w := range result.Warnings {
		s.logger.Warn("Import warning", "detail", w)
	}

	s.todos = s.mut.Replace(ctx, result.Todos)
	s.editing = ""

	detail := plural(len(s.todos), "todo")
	s.record(logging.EventImport, todo.Todo{}, detail)
	s.info("Imported", detail)
	return result, nil
}

// View is one render pass over the session.
type View struct {
	Now     time.Time
	Items   []todo.Todo
	Shown   int
	Total   int
	Stats   todo.Stats
	Filter  todo.Filter
	Sort    todo.SortKey
	Editing string

	// DueSoonDays is the due-soon window the view was built with.
	DueSoonDays int
}

// View filters and sorts the collection. now is the single instant used for
// every derived status in this pass.
func (s *Session) View(now time.Time) View {
	res := todo.Query(s.todos, s.filter, s.sort)
	return View{
		Now:     now,
		Items:   res.Items,
		Shown:   res.Shown,
		Total:   res.Total,
		Stats:   todo.Summarize(s.todos, now),
		Filter:  s.filter,
		Sort:    s.sort,
		Editing: s.editing,

		DueSoonDays: s.dueSoonDays,
	}
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.clock()
}

func (s *Session) record(kind string, t todo.Todo, detail string) {
	event := logging.Event{
		Type:      kind,
		Timestamp: s.clock().UTC(),
		ID:        t.ID,
		Title:     t.Title,
		Detail:    detail,
	}
	if err := s.journal.Write(event); err != nil {
		s.logger.Warn("Failed to write journal", "err", err)
	}
}

func (s *Session) info(title, detail string) {
	s.notice = Notice{Kind: NoticeInfo, Title: title, Detail: detail}
}

func (s *Session) fail(title string, err error) {
	s.notice = Notice{Kind: NoticeError, Title: title, Detail: err.Error()}
	var fe todo.FieldErrors
	if errors.As(err, &fe) {
		s.logger.Debug(title, "err", err)
		return
	}
	s.logger.Error(title, "err", err)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
