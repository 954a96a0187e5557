// Package tui is the interactive board: three columns, a keyboard driven
// drag and drop, a live search box and the notification tray.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BuzzLyutic/taskflow/internal/board"
	"github.com/BuzzLyutic/taskflow/internal/dispatch"
	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/internal/notify"
	"github.com/BuzzLyutic/taskflow/internal/service"
)

// Service is the part of the board service the screen drives.
type Service interface {
	Load(ctx context.Context) *dispatch.Future[[]model.Task]
	AddDefaultTask(ctx context.Context) (*dispatch.Future[model.Task], error)
	EditTask(ctx context.Context, t model.Task) (*dispatch.Future[model.Task], error)
	DeleteTask(ctx context.Context, id string) *dispatch.Future[string]
	Task(id string) (model.Task, bool)
	Board(search string) board.Projection
	Drag() *board.DragController
	State() (service.State, error)
}

type Toasts interface {
	Pending() []notify.Notification
	Dismiss(id string) bool
}

// doneMsg reports that a request finished and its result is in the store.
type doneMsg struct{ err error }

type Model struct {
	ctx    context.Context
	svc    Service
	toasts Toasts

	col, row  int
	search    textinput.Model
	searching bool
	loggedOut bool
	lastErr   error
	width     int

	// confirmID is the task waiting for a delete confirmation.
	confirmID string
	// detailID is the task open in the detail pane.
	detailID     string
	title        textinput.Model
	editingTitle bool
}

func New(ctx context.Context, svc Service, toasts Toasts) *Model {
	ti := textinput.New()
	ti.Placeholder = "search title or description"
	ti.Prompt = "/ "
	ti.CharLimit = 100
	ti.Cursor.SetMode(cursor.CursorStatic)

	title := textinput.New()
	title.Prompt = "Title: "
	title.CharLimit = 200
	title.Cursor.SetMode(cursor.CursorStatic)

	return &Model{ctx: ctx, svc: svc, toasts: toasts, search: ti, title: title}
}

// LoggedOut reports whether the screen closed because the session expired.
func (m *Model) LoggedOut() bool { return m.loggedOut }

func (m *Model) Init() tea.Cmd {
	return waitFor(m.ctx, m.svc.Load(m.ctx))
}

func waitFor[T any](ctx context.Context, fut *dispatch.Future[T]) tea.Cmd {
	return func() tea.Msg {
		_, err := fut.Await(ctx)
		return doneMsg{err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case doneMsg:
		if errors.Is(msg.err, dispatch.ErrStopped) {
			return m, tea.Quit
		}
		m.lastErr = msg.err
		if state, _ := m.svc.State(); state == service.StateLoggedOut {
			m.loggedOut = true
			return m, tea.Quit
		}
		if m.detailID != "" {
			m.follow(m.detailID)
		}
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.confirmID != "":
			return m.updateConfirm(msg)
		case m.editingTitle:
			return m.updateTitle(msg)
		case m.detailID != "":
			return m.updateDetail(msg)
		case m.searching:
			return m.updateSearch(msg)
		}
		if m.svc.Drag().State() == board.Dragging {
			return m.updateDragging(msg)
		}
		return m.updateIdle(msg)
	}
	return m, nil
}

func (m *Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state, _ := m.svc.State()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Reload):
		return m, waitFor(m.ctx, m.svc.Load(m.ctx))
	}
	if state != service.StateReady {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Left):
		m.moveCol(-1)
	case key.Matches(msg, keys.Right):
		m.moveCol(1)
	case key.Matches(msg, keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, keys.Down):
		m.row++
		m.clamp()
	case key.Matches(msg, keys.Search):
		m.searching = true
		m.search.Focus()
	case key.Matches(msg, keys.Pick):
		if _, ok := m.selected(); ok {
			m.svc.Drag().OnDragStart(board.Location{Column: board.Columns[m.col].ID, Index: m.row})
		}
	case key.Matches(msg, keys.Add):
		fut, err := m.svc.AddDefaultTask(m.ctx)
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		return m, waitFor(m.ctx, fut)
	case key.Matches(msg, keys.Open):
		if t, ok := m.selected(); ok {
			m.detailID = t.ID
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := m.selected(); ok {
			m.confirmID = t.ID
		}
	case key.Matches(msg, keys.Dismiss):
		if pending := m.toasts.Pending(); len(pending) > 0 {
			m.toasts.Dismiss(pending[0].ID)
		}
	}
	return m, nil
}

// updateDragging moves the drop target between columns until the task is
// dropped on one of them or outside the board.
func (m *Model) updateDragging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	drag := m.svc.Drag()
	src, _ := drag.Source()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Left):
		m.moveCol(-1)
	case key.Matches(msg, keys.Right):
		m.moveCol(1)
	case key.Matches(msg, keys.Cancel):
		_, err := drag.OnDragEnd(m.ctx, src, nil)
		m.lastErr = err
		m.col = columnIndex(src.Column)
		m.row = src.Index
	case key.Matches(msg, keys.Drop):
		dest := &board.Location{Column: board.Columns[m.col].ID}
		fut, err := drag.OnDragEnd(m.ctx, src, dest)
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		return m, waitFor(m.ctx, fut)
	}
	return m, nil
}

// updateConfirm deletes the pending task on y. Any other key keeps it.
func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmID
	m.confirmID = ""
	if !key.Matches(msg, keys.Confirm) {
		return m, nil
	}
	m.detailID = ""
	return m, waitFor(m.ctx, m.svc.DeleteTask(m.ctx, id))
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t, ok := m.svc.Task(m.detailID)
	if !ok {
		m.detailID = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.detailID = ""
	case key.Matches(msg, keys.Title):
		m.editingTitle = true
		m.title.SetValue(t.Title)
		m.title.CursorEnd()
		m.title.Focus()
	case key.Matches(msg, keys.Priority):
		t.Priority = nextPriority(t.Priority)
		return m.save(t)
	case key.Matches(msg, keys.Status):
		t.Status = nextStatus(t.Status)
		return m.save(t)
	case key.Matches(msg, keys.Delete):
		m.confirmID = t.ID
	case key.Matches(msg, keys.Dismiss):
		if pending := m.toasts.Pending(); len(pending) > 0 {
			m.toasts.Dismiss(pending[0].ID)
		}
	}
	return m, nil
}

func (m *Model) updateTitle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editingTitle = false
		m.title.Blur()
		t, ok := m.svc.Task(m.detailID)
		if !ok {
			return m, nil
		}
		t.Title = m.title.Value()
		return m.save(t)
	case tea.KeyEsc:
		m.editingTitle = false
		m.title.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return m, cmd
}

// save sends the edited record. The board changes once the server answers.
func (m *Model) save(t model.Task) (tea.Model, tea.Cmd) {
	fut, err := m.svc.EditTask(m.ctx, t)
	m.lastErr = err
	if err != nil {
		return m, nil
	}
	return m, waitFor(m.ctx, fut)
}

var (
	priorityCycle = []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}
	statusCycle   = []model.Status{model.StatusToDo, model.StatusInProgress, model.StatusDone}
)

func nextPriority(p model.Priority) model.Priority {
	for i, v := range priorityCycle {
		if v == p {
			return priorityCycle[(i+1)%len(priorityCycle)]
		}
	}
	return priorityCycle[0]
}

func nextStatus(st model.Status) model.Status {
	for i, v := range statusCycle {
		if v == st {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return statusCycle[0]
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applySearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()
	return m, cmd
}

func (m *Model) applySearch() {
	m.svc.Drag().SetSearch(m.search.Value())
	m.clamp()
}

func (m *Model) projection() board.Projection {
	return m.svc.Board(m.search.Value())
}

func (m *Model) selected() (model.Task, bool) {
	tasks := m.projection().Tasks(board.Columns[m.col].ID)
	if m.row < 0 || m.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.row], true
}

// follow puts the cursor on task id wherever the board now shows it. The
// detail pane closes when the task is gone.
func (m *Model) follow(id string) {
	if _, ok := m.svc.Task(id); !ok {
		m.detailID = ""
		return
	}
	p := m.projection()
	for i, c := range board.Columns {
		for j, t := range p.Tasks(c.ID) {
			if t.ID == id {
				m.col, m.row = i, j
				return
			}
		}
	}
}

func (m *Model) moveCol(delta int) {
	m.col = (m.col + delta + len(board.Columns)) % len(board.Columns)
	m.clamp()
}

// clamp keeps the cursor on an existing card after the board changed.
func (m *Model) clamp() {
	n := len(m.projection().Tasks(board.Columns[m.col].ID))
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func columnIndex(id board.ColumnID) int {
	for i, c := range board.Columns {
		if c.ID == id {
			return i
		}
	}
	return 0
}

// Run shows the board until the user quits or the session expires.
func Run(ctx context.Context, svc Service, toasts Toasts) (*Model, error) {
	m := New(ctx, svc, toasts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return m, err
}
