// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todos/internal/session"
	"github.com/nibzard/todos/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	tickInterval time.Duration
}

// WithTickInterval sets how often the screen is redrawn so relative
// deadline labels stay current.
func WithTickInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

// RunTUI runs the interactive list over an opened session.
func RunTUI(ctx context.Context, sess *session.Session, opts ...TUIOption) error {
	c := &tuiConfig{tickInterval: time.Minute}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	return runProgram(ctx, newTUIModel(ctx, sess, c.tickInterval))
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

// Form fields in focus order.
const (
	fieldTitle = iota
	fieldDeadline
	fieldPriority
	fieldCount
)

var fieldNames = [fieldCount]string{"title", "deadline", "priority"}

type tuiModel struct {
	ctx          context.Context
	sess         *session.Session
	mode         mode
	cursor       int
	inputs       []textinput.Model
	focus        int
	editing      bool
	formErrs     todo.FieldErrors
	pending      todo.Todo
	showHelp     bool
	tickInterval time.Duration
	width        int
}

type tickMsg time.Time

func newTUIModel(ctx context.Context, sess *session.Session, tick time.Duration) *tuiModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldTitle].Placeholder = "What needs doing?"
	inputs[fieldDeadline].Placeholder = todo.DateLayout
	inputs[fieldDeadline].CharLimit = len(todo.DateLayout)
	inputs[fieldPriority].Placeholder = "high, medium or low"
	inputs[fieldPriority].CharLimit = 6

	return &tuiModel{
		ctx:          ctx,
		sess:         sess,
		inputs:       inputs,
		tickInterval: tick,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	if m.tickInterval <= 0 {
		return nil
	}
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for i := range m.inputs {
			m.inputs[i].Width = max(20, msg.Width-20)
		}
		return m, nil
	case tickMsg:
		return m, tickCmd(m.tickInterval)
	}

	if m.mode == modeForm {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.items()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(items))
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = clampCursor(len(items)-1, len(items))
	case "a":
		return m, m.openForm(todo.Draft{Priority: string(todo.DefaultPriority)}, false)
	case "e", "enter":
		if len(items) == 0 {
			return m, nil
		}
		draft, err := m.sess.StartEdit(items[m.cursor].ID)
		if err != nil {
			return m, nil
		}
		return m, m.openForm(draft, true)
	case " ", "x":
		if len(items) == 0 {
			return m, nil
		}
		id := items[m.cursor].ID
		if _, err := m.sess.Toggle(m.ctx, id); err == nil {
			m.follow(id)
		}
	case "d", "delete":
		if len(items) == 0 {
			return m, nil
		}
		m.pending = items[m.cursor]
		m.mode = modeConfirmDelete
	case "s":
		m.sess.SetSort(nextSort(m.sess.Sort()))
		m.cursor = 0
	case "f":
		f := m.sess.Filter()
		f.Status = nextStatus(f.Status)
		m.sess.SetFilter(f)
		m.cursor = 0
	case "p":
		f := m.sess.Filter()
		f.Priority = nextPriority(f.Priority)
		m.sess.SetFilter(f)
		m.cursor = 0
	case "r", "f5":
		m.sess.Refresh(m.ctx)
		m.cursor = clampCursor(m.cursor, len(m.items()))
	case "?", "h":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.editing {
			m.sess.CancelEdit()
		}
		m.closeForm()
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *tuiModel) submitForm() (tea.Model, tea.Cmd) {
	draft := todo.Draft{
		Title:    m.inputs[fieldTitle].Value(),
		Deadline: m.inputs[fieldDeadline].Value(),
		Priority: m.inputs[fieldPriority].Value(),
	}

	var (
		saved todo.Todo
		err   error
	)
	if m.editing {
		saved, err = m.sess.SubmitEdit(m.ctx, draft)
	} else {
		saved, err = m.sess.Add(m.ctx, draft)
	}

	var fe todo.FieldErrors
	if errors.As(err, &fe) {
		m.formErrs = fe
		for i, name := range fieldNames {
			if _, bad := fe[name]; bad {
				return m, m.focusField(i)
			}
		}
		return m, nil
	}

	m.closeForm()
	if err == nil {
		m.follow(saved.ID)
	}
	return m, nil
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k := msg.String(); k == "y" || k == "Y" {
		_, _ = m.sess.Delete(m.ctx, m.pending.ID)
		m.cursor = clampCursor(m.cursor, len(m.items()))
	}
	m.pending = todo.Todo{}
	m.mode = modeList
	return m, nil
}

func (m *tuiModel) openForm(d todo.Draft, editing bool) tea.Cmd {
	m.inputs[fieldTitle].SetValue(d.Title)
	m.inputs[fieldDeadline].SetValue(d.Deadline)
	m.inputs[fieldPriority].SetValue(d.Priority)
	m.editing = editing
	m.formErrs = nil
	m.mode = modeForm
	return m.focusField(fieldTitle)
}

func (m *tuiModel) closeForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
	m.editing = false
	m.formErrs = nil
	m.mode = modeList
}

func (m *tuiModel) focusField(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
			continue
		}
		m.inputs[j].Blur()
	}
	return cmd
}

// follow moves the cursor onto id if it is visible.
func (m *tuiModel) follow(id string) {
	items := m.items()
	if i := todo.Index(items, id); i >= 0 {
		m.cursor = i
		return
	}
	m.cursor = clampCursor(m.cursor, len(items))
}

func (m *tuiModel) items() []todo.Todo {
	return m.sess.View(m.sess.Now()).Items
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.mode)
		return b.String()
	}

	v := m.sess.View(m.sess.Now())
	writeOverview(&b, v)

	switch m.mode {
	case modeForm:
		m.writeForm(&b)
	case modeConfirmDelete:
		writeList(&b, v, m.cursor)
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %q? y/n", m.pending.Title)))
		b.WriteString("\n\n")
	default:
		writeList(&b, v, m.cursor)
	}

	writeNotice(&b, m.sess.Notice())
	writeFooter(&b, m.mode)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func nextSort(k todo.SortKey) todo.SortKey {
	keys := todo.SortKeys()
	for i, key := range keys {
		if key == k {
			return keys[(i+1)%len(keys)]
		}
	}
	return keys[0]
}

func nextStatus(s todo.StatusFilter) todo.StatusFilter {
	filters := todo.StatusFilters()
	for i, f := range filters {
		if f == s {
			return filters[(i+1)%len(filters)]
		}
	}
	return filters[0]
}

// nextPriority cycles all -> high -> medium -> low -> all.
func nextPriority(p todo.Priority) todo.Priority {
	cycle := append([]todo.Priority{""}, todo.Priorities()...)
	for i, q := range cycle {
		if q == p {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return ""
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
