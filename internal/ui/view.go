package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todos/internal/session"
	"github.com/nibzard/todos/internal/todo"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dueSoonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	confirmStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	labelStyle    = lipgloss.NewStyle().Width(10)
	priorityStyle = map[todo.Priority]lipgloss.Style{
		todo.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		todo.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		todo.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render("todos"))
	b.WriteString("\n\n")
}

func writeOverview(b *strings.Builder, v session.View) {
	b.WriteString(fmt.Sprintf("  Total: %d  Completed: %d  Pending: %d  Overdue: %d\n",
		v.Stats.Total, v.Stats.Completed, v.Stats.Pending, v.Stats.Overdue))

	priority := "all"
	if v.Filter.Priority != "" {
		priority = string(v.Filter.Priority)
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Status: %s  Priority: %s  Sort: %s  Showing %d / %d",
		v.Filter.Status, priority, v.Sort, v.Shown, v.Total)))
	b.WriteString("\n\n")
}

func writeList(b *strings.Builder, v session.View, cursor int) {
	if v.Total == 0 {
		b.WriteString("  No todos yet. Press a to add one.\n\n")
		return
	}
	if v.Shown == 0 {
		b.WriteString("  No todos match the current filter.\n\n")
		return
	}
	for i, t := range v.Items {
		b.WriteString(formatTodo(t, v, i == cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func formatTodo(t todo.Todo, v session.View, selected bool) string {
	pointer := "  "
	if selected {
		pointer = cursorStyle.Render("> ")
	}
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	title := t.Title
	if t.Completed {
		title = doneStyle.Render(title)
	}

	pstyle, ok := priorityStyle[t.Priority]
	if !ok {
		pstyle = dimStyle
	}
	tag := pstyle.Render(fmt.Sprintf("%-6s", t.Priority))

	due := fmt.Sprintf("%s, %s", t.Deadline.UTC().Format(todo.DateLayout), todo.DueLabel(t, v.Now))
	switch {
	case t.Completed:
		due = dimStyle.Render(due)
	case todo.Overdue(t, v.Now):
		due = overdueStyle.Render(due)
	case todo.DueWithin(t, v.Now, dueSoonDays(v)):
		due = dueSoonStyle.Render(due)
	default:
		due = dimStyle.Render(due)
	}

	line := fmt.Sprintf("%s%s %s %s  %s", pointer, check, tag, title, due)
	if v.Editing == t.ID {
		line += dimStyle.Render("  (editing)")
	}
	return line
}

func dueSoonDays(v session.View) int {
	if v.DueSoonDays > 0 {
		return v.DueSoonDays
	}
	return todo.DefaultDueSoonDays
}

func (m *tuiModel) writeForm(b *strings.Builder) {
	heading := "Add todo"
	if m.editing {
		heading = "Edit todo"
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")

	for i, name := range fieldNames {
		label := labelStyle.Render(name)
		if i == m.focus {
			label = cursorStyle.Inherit(labelStyle).Render(name)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", label, m.inputs[i].View()))
		if msg, bad := m.formErrs[name]; bad {
			b.WriteString("  " + labelStyle.Render("") + " " + errorStyle.Render(msg) + "\n")
		}
	}
	b.WriteString("\n")
}

func writeNotice(b *strings.Builder, n session.Notice) {
	if n.Title == "" {
		return
	}
	text := n.Title
	if n.Detail != "" {
		text += ": " + n.Detail
	}
	if n.IsError() {
		b.WriteString(errorStyle.Render(text))
	} else {
		b.WriteString(infoStyle.Render(text))
	}
	b.WriteString("\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j  Move cursor\n")
	b.WriteString("  a             Add a todo\n")
	b.WriteString("  e, enter      Edit the selected todo\n")
	b.WriteString("  space, x      Toggle completed\n")
	b.WriteString("  d             Delete (asks y/n)\n")
	b.WriteString("  s             Cycle sort: created, deadline, priority\n")
	b.WriteString("  f             Cycle status filter: all, pending, completed\n")
	b.WriteString("  p             Cycle priority filter: all, high, medium, low\n")
	b.WriteString("  r, F5         Reload from storage\n")
	b.WriteString("  ?, h          Toggle this help screen\n")
	b.WriteString("  q, ctrl+c     Quit\n\n")
	b.WriteString("In the form: tab/shift+tab to move, enter to save, esc to cancel.\n\n")
}

func writeFooter(b *strings.Builder, m mode) {
	switch m {
	case modeForm:
		b.WriteString(dimStyle.Render("tab next field | enter save | esc cancel"))
	case modeConfirmDelete:
		b.WriteString(dimStyle.Render("y confirm | any other key cancels"))
	default:
		b.WriteString(dimStyle.Render("a add | e edit | space toggle | d delete | s sort | f filter | p priority | ? help | q quit"))
	}
	b.WriteString("\n")
}
