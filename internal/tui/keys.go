package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Pick    key.Binding
	Drop    key.Binding
	Cancel  key.Binding
	Search  key.Binding
	Add     key.Binding
	Delete  key.Binding
	Reload  key.Binding
	Dismiss key.Binding
	Quit    key.Binding

	Open     key.Binding
	Confirm  key.Binding
	Abort    key.Binding
	Title    key.Binding
	Priority key.Binding
	Status   key.Binding
	Save     key.Binding
	Back     key.Binding
}

var keys = keyMap{
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Pick:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "pick up")),
	Drop:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
	Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "drop outside")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Add:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Dismiss: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
	Abort:    key.NewBinding(key.WithHelp("any key", "cancel")),
	Title:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
	Priority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority")),
	Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
	Save:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
}

func (k keyMap) idleHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Pick, k.Open, k.Search, k.Add, k.Delete, k.Reload, k.Dismiss, k.Quit}
}

func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Title, k.Priority, k.Status, k.Delete, k.Back, k.Quit}
}

func (k keyMap) titleHelp() []key.Binding {
	return []key.Binding{k.Save, k.Back}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Abort}
}

func (k keyMap) draggingHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Drop, k.Cancel}
}
