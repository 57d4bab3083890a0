package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todos/internal/kv"
	"github.com/nibzard/todos/internal/todo"
)

var t0 = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

// fakeClock returns now, advancing by step after every call.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	n := c.now
	c.now = c.now.Add(c.step)
	return n
}

func seqIDs() todo.IDFunc {
	n := 0
	return func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	}
}

func newTestAdapter(t *testing.T) (*Adapter, *kv.MemoryStore, *bytes.Buffer) {
	t.Helper()
	mem := kv.NewMemoryStore()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return NewAdapter(mem, "", logger), mem, &buf
}

func newTestMutations(t *testing.T, clock *fakeClock) (*Mutations, *Adapter, *kv.MemoryStore) {
	t.Helper()
	a, mem, _ := newTestAdapter(t)
	f := todo.Factory{Now: clock.Now, NewID: seqIDs()}
	return NewMutations(a, f), a, mem
}

func TestAdapterLoadEmpty(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	got := a.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("Load() = %#v, want empty non-nil", got)
	}
	if a.Key() != DefaultKey {
		t.Errorf("Key() = %q, want %q", a.Key(), DefaultKey)
	}
}

func TestAdapterRoundTrip(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	ctx := context.Background()
	f := todo.Factory{Now: func() time.Time { return t0 }, NewID: seqIDs()}
	want := []todo.Todo{
		f.New("one", todo.EndOfDay(t0), todo.PriorityHigh),
		f.New("two", todo.EndOfDay(t0.AddDate(0, 0, 1)), todo.PriorityLow),
	}

	a.Save(ctx, want)
	got := a.Load(ctx)
	if len(got) != len(want) {
		t.Fatalf("Load() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("Load()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAdapterLoadCorrupt(t *testing.T) {
	a, mem, logs := newTestAdapter(t)
	ctx := context.Background()
	_ = mem.Set(ctx, DefaultKey, []byte("{not json"))

	got := a.Load(ctx)
	if len(got) != 0 {
		t.Errorf("Load() on corrupt data = %d todos, want 0", len(got))
	}
	if !strings.Contains(logs.String(), "Failed to load todos") {
		t.Errorf("expected failure to be logged, got %q", logs.String())
	}
}

func TestAdapterLoadBackendError(t *testing.T) {
	a, mem, logs := newTestAdapter(t)
	mem.FailGet(errors.New("disk gone"))

	if got := a.Load(context.Background()); len(got) != 0 {
		t.Errorf("Load() = %d todos, want 0", len(got))
	}
	if !strings.Contains(logs.String(), "disk gone") {
		t.Errorf("expected backend error in logs, got %q", logs.String())
	}
}

func TestAdapterSaveFailureIsSwallowed(t *testing.T) {
	a, mem, logs := newTestAdapter(t)
	ctx := context.Background()
	mem.FailSet(errors.New("quota exceeded"))

	a.Save(ctx, []todo.Todo{{ID: "x", Title: "x"}})

	if !strings.Contains(logs.String(), "quota exceeded") {
		t.Errorf("expected save failure in logs, got %q", logs.String())
	}
	mem.FailSet(nil)
	if got := a.Load(ctx); len(got) != 0 {
		t.Errorf("failed save should not persist, got %d todos", len(got))
	}
}

func TestAdapterSaveNilWritesEmptyArray(t *testing.T) {
	a, _, _ := newTestAdapter(t)
	ctx := context.Background()
	a.Save(ctx, nil)

	raw, found, err := a.Raw(ctx)
	if err != nil || !found {
		t.Fatalf("Raw() = (%q, %v, %v)", raw, found, err)
	}
	if string(raw) != "[]" {
		t.Errorf("Raw() = %q, want []", raw)
	}
}

func TestMutationsAddPrepends(t *testing.T) {
	m, a, _ := newTestMutations(t, &fakeClock{now: t0, step: time.Second})
	ctx := context.Background()
	deadline := todo.EndOfDay(t0.AddDate(0, 0, 1))

	m.Add(ctx, "first", deadline, todo.PriorityLow)
	got := m.Add(ctx, "  second  ", deadline, "")

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "second" || got[1].Title != "first" {
		t.Errorf("order = [%s %s], want [second first]", got[0].Title, got[1].Title)
	}
	if got[0].Priority != todo.PriorityMedium {
		t.Errorf("default priority = %q, want medium", got[0].Priority)
	}
	if got[0].Completed || !got[0].CreatedAt.Equal(got[0].UpdatedAt) {
		t.Errorf("new todo = %+v, want pending with createdAt == updatedAt", got[0])
	}

	stored := a.Load(ctx)
	if len(stored) != 2 || stored[0].ID != got[0].ID {
		t.Errorf("stored = %+v, want the returned collection", stored)
	}
}

func TestMutationsUpdate(t *testing.T) {
	clock := &fakeClock{now: t0, step: time.Minute}
	m, a, _ := newTestMutations(t, clock)
	ctx := context.Background()
	deadline := todo.EndOfDay(t0.AddDate(0, 0, 3))

	todos := m.Add(ctx, "write report", deadline, todo.PriorityMedium)
	orig := todos[0]

	title := "write final report"
	prio := todo.PriorityHigh
	got, ok := m.Update(ctx, orig.ID, todo.Patch{Title: &title, Priority: &prio})
	if !ok {
		t.Fatal("Update() ok = false")
	}

	loaded := a.Load(ctx)
	rec := todo.Find(loaded, orig.ID)
	if rec == nil {
		t.Fatal("updated todo missing after load")
	}
	if rec.Title != title || rec.Priority != prio {
		t.Errorf("patched fields = (%q, %q), want (%q, %q)", rec.Title, rec.Priority, title, prio)
	}
	if !rec.Deadline.Equal(orig.Deadline) || rec.Completed != orig.Completed || !rec.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("unpatched fields changed: %+v vs %+v", rec, orig)
	}
	if !rec.UpdatedAt.After(orig.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", rec.UpdatedAt, orig.UpdatedAt)
	}
	if !got[0].Equal(*rec) {
		t.Error("returned collection differs from stored")
	}
}

func TestMutationsAbsentIDLeavesBytesUnchanged(t *testing.T) {
	m, _, mem := newTestMutations(t, &fakeClock{now: t0, step: time.Second})
	ctx := context.Background()
	m.Add(ctx, "keep me", todo.EndOfDay(t0), todo.PriorityLow)

	before, _, _ := mem.Get(ctx, DefaultKey)
	writes := mem.Writes()

	title := "nope"
	ops := map[string]func() bool{
		"update": func() bool { _, ok := m.Update(ctx, "missing", todo.Patch{Title: &title}); return ok },
		"delete": func() bool { _, ok := m.Delete(ctx, "missing"); return ok },
		"toggle": func() bool { _, ok := m.Toggle(ctx, "missing"); return ok },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if op() {
				t.Error("ok = true for absent id")
			}
			after, _, _ := mem.Get(ctx, DefaultKey)
			if !bytes.Equal(before, after) {
				t.Errorf("stored bytes changed:\n%s\n%s", before, after)
			}
			if mem.Writes() != writes {
				t.Errorf("writes = %d, want %d", mem.Writes(), writes)
			}
		})
	}
}

func TestMutationsDelete(t *testing.T) {
	m, a, _ := newTestMutations(t, &fakeClock{now: t0, step: time.Second})
	ctx := context.Background()
	d := todo.EndOfDay(t0)
	m.Add(ctx, "a", d, "")
	m.Add(ctx, "b", d, "")
	todos := m.Add(ctx, "c", d, "")

	got, ok := m.Delete(ctx, todos[1].ID)
	if !ok {
		t.Fatal("Delete() ok = false")
	}
	if len(got) != 2 || got[0].Title != "c" || got[1].Title != "a" {
		t.Errorf("after delete = %+v", got)
	}
	if len(a.Load(ctx)) != 2 {
		t.Error("delete not persisted")
	}
}

func TestMutationsToggleTwice(t *testing.T) {
	// A stalled clock still has to produce increasing updatedAt values.
	m, _, _ := newTestMutations(t, &fakeClock{now: t0, step: 0})
	ctx := context.Background()
	todos := m.Add(ctx, "flip", todo.EndOfDay(t0), "")
	orig := todos[0]

	once, _ := m.Toggle(ctx, orig.ID)
	twice, _ := m.Toggle(ctx, orig.ID)

	if !once[0].Completed {
		t.Error("first toggle should complete")
	}
	if twice[0].Completed != orig.Completed {
		t.Error("second toggle should restore completion")
	}
	if !once[0].UpdatedAt.After(orig.UpdatedAt) || !twice[0].UpdatedAt.After(once[0].UpdatedAt) {
		t.Errorf("updatedAt not strictly increasing: %v, %v, %v",
			orig.UpdatedAt, once[0].UpdatedAt, twice[0].UpdatedAt)
	}
}

func TestMutationsReplace(t *testing.T) {
	m, a, _ := newTestMutations(t, &fakeClock{now: t0})
	ctx := context.Background()
	m.Add(ctx, "old", todo.EndOfDay(t0), "")

	incoming := []todo.Todo{
		{ID: "x", Title: "x", Deadline: t0, Priority: todo.PriorityHigh, CreatedAt: t0, UpdatedAt: t0},
	}
	got := m.Replace(ctx, incoming)
	if len(got) != 1 || got[0].ID != "x" {
		t.Errorf("Replace() = %+v", got)
	}
	if loaded := a.Load(ctx); len(loaded) != 1 || loaded[0].ID != "x" {
		t.Errorf("Load() after replace = %+v", loaded)
	}

	if got := m.Replace(ctx, nil); got == nil || len(got) != 0 {
		t.Errorf("Replace(nil) = %#v, want empty", got)
	}
}

func TestMutationsOnFileBackend(t *testing.T) {
	fs, err := kv.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	a := NewAdapter(fs, "custom_key", log.New(&bytes.Buffer{}))
	m := NewMutations(a, todo.Factory{Now: func() time.Time { return t0 }, NewID: seqIDs()})
	ctx := context.Background()

	m.Add(ctx, "persisted", todo.EndOfDay(t0), todo.PriorityHigh)

	reopened := NewAdapter(fs, "custom_key", nil)
	got := reopened.Load(ctx)
	if len(got) != 1 || got[0].Title != "persisted" {
		t.Errorf("Load() = %+v", got)
	}
}
