package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/taskflow/internal/board"
	"github.com/BuzzLyutic/taskflow/internal/gateway"
	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/internal/notify"
	"github.com/BuzzLyutic/taskflow/internal/service"
)

const minColumnWidth = 24

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	columnStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)

	targetColumnStyle = columnStyle.BorderForeground(lipgloss.Color("212"))
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("63"))
	liftedCardStyle   = cardStyle.BorderStyle(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("212"))
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	priorityStyles = map[model.Priority]lipgloss.Style{
		model.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TaskFlow"))
	b.WriteString("\n\n")

	state, loadErr := m.svc.State()
	switch state {
	case service.StateLoading:
		b.WriteString(mutedStyle.Render("Loading tasks..."))
		b.WriteString("\n")
		return b.String()
	case service.StateLoggedOut:
		b.WriteString(errorStyle.Render("Session expired, please log in."))
		b.WriteString("\n")
		return b.String()
	case service.StateFailed:
		b.WriteString(errorStyle.Render("Could not load tasks: " + gateway.Message(loadErr)))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("r to retry, q to quit"))
		b.WriteString("\n")
		return b.String()
	}

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	if t, ok := m.svc.Task(m.detailID); ok {
		b.WriteString(m.detailView(t))
	} else {
		b.WriteString(m.columnsView())
	}
	b.WriteString("\n")

	if t, ok := m.svc.Task(m.confirmID); ok {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q? Are you sure? (y/N)", t.Title)))
		b.WriteString("\n")
	}

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.toastsView())
	b.WriteString(m.helpView())
	return b.String()
}

func (m *Model) columnWidth() int {
	w := m.width/len(board.Columns) - 4
	if w < minColumnWidth {
		return minColumnWidth
	}
	return w
}

func (m *Model) columnsView() string {
	p := m.projection()
	drag := m.svc.Drag()
	src, dragging := drag.Source()
	width := m.columnWidth()

	cols := make([]string, 0, len(board.Columns))
	for i, c := range board.Columns {
		tasks := p.Tasks(c.ID)

		lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", c.Title, len(tasks)))}
		if len(tasks) == 0 {
			lines = append(lines, mutedStyle.Render("no tasks"))
		}
		for j, t := range tasks {
			style := cardStyle
			switch {
			case dragging && src.Column == c.ID && src.Index == j:
				style = liftedCardStyle
			case !dragging && i == m.col && j == m.row:
				style = selectedCardStyle
			}
			lines = append(lines, style.Width(width-4).Render(card(t)))
		}

		style := columnStyle
		if dragging && i == m.col {
			style = targetColumnStyle
		}
		cols = append(cols, style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func card(t model.Task) string {
	prio := string(t.Priority)
	if s, ok := priorityStyles[t.Priority]; ok {
		prio = s.Render(prio)
	}
	return fmt.Sprintf("%s\n%s · due %s", t.Title, prio, mutedStyle.Render(t.DueLabel()))
}

func (m *Model) detailView(t model.Task) string {
	title := lipgloss.NewStyle().Bold(true).Render(t.Title)
	if m.editingTitle {
		title = m.title.View()
	}
	desc := t.Description
	if desc == "" {
		desc = mutedStyle.Render("No description")
	}
	prio := string(t.Priority)
	if s, ok := priorityStyles[t.Priority]; ok {
		prio = s.Render(prio)
	}

	rows := []string{
		title,
		"",
		desc,
		"",
		headerStyle.Render("Status") + string(t.Status),
		headerStyle.Render("Priority") + prio,
		headerStyle.Render("Due") + t.DueLabel(),
		mutedStyle.Render(t.ID),
	}
	return targetColumnStyle.Width(m.columnWidth() * 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) toastsView() string {
	var b strings.Builder
	for _, n := range m.toasts.Pending() {
		if n.Level == notify.LevelError {
			b.WriteString(errorStyle.Render("✗ " + n.Message))
		} else {
			b.WriteString(successStyle.Render("✓ " + n.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) helpView() string {
	var bindings []key.Binding
	switch {
	case m.confirmID != "":
		bindings = keys.confirmHelp()
	case m.editingTitle:
		bindings = keys.titleHelp()
	case m.detailID != "":
		bindings = keys.detailHelp()
	case m.svc.Drag().State() == board.Dragging:
		bindings = keys.draggingHelp()
	default:
		bindings = keys.idleHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return "\n" + mutedStyle.Render(strings.Join(parts, " • "))
}
