package board

import (
	"errors"
	"strings"

	"github.com/BuzzLyutic/taskflow/internal/model"
)

var ErrUnknownColumn = errors.New("unknown column")

type ColumnID string

const (
	ColumnToDo       ColumnID = "todo"
	ColumnInProgress ColumnID = "inProgress"
	ColumnDone       ColumnID = "done"
)

type Column struct {
	ID     ColumnID
	Title  string
	Status model.Status
}

// Columns in display order.
var Columns = []Column{
	{ID: ColumnToDo, Title: "To Do", Status: model.StatusToDo},
	{ID: ColumnInProgress, Title: "In Progress", Status: model.StatusInProgress},
	{ID: ColumnDone, Title: "Done", Status: model.StatusDone},
}

func ColumnByID(id ColumnID) (Column, error) {
	for _, c := range Columns {
		if c.ID == id {
			return c, nil
		}
	}
	return Column{}, ErrUnknownColumn
}

// ParseColumn accepts a column id or any spelling of its status.
func ParseColumn(s string) (Column, error) {
	if c, err := ColumnByID(ColumnID(s)); err == nil {
		return c, nil
	}
	st, err := model.ParseStatus(s)
	if err != nil {
		return Column{}, ErrUnknownColumn
	}
	return ColumnForStatus(st)
}

func ColumnForStatus(st model.Status) (Column, error) {
	for _, c := range Columns {
		if c.Status == st {
			return c, nil
		}
	}
	return Column{}, ErrUnknownColumn
}

// Projection is the board as drawn: one ordered list per column.
type Projection struct {
	ToDo       []model.Task
	InProgress []model.Task
	Done       []model.Task
}

// Project groups tasks by status, keeping store order, and drops tasks whose
// title and description both miss the search term. Matching ignores case; an
// empty term matches everything.
func Project(tasks []model.Task, search string) Projection {
	p := Projection{
		ToDo:       []model.Task{},
		InProgress: []model.Task{},
		Done:       []model.Task{},
	}
	term := strings.ToLower(search)

	for _, t := range tasks {
		if !Matches(t, term) {
			continue
		}
		switch t.Status {
		case model.StatusToDo:
			p.ToDo = append(p.ToDo, t)
		case model.StatusInProgress:
			p.InProgress = append(p.InProgress, t)
		case model.StatusDone:
			p.Done = append(p.Done, t)
		}
	}
	return p
}

// Matches expects term to be lower case already.
func Matches(t model.Task, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

func (p Projection) Tasks(id ColumnID) []model.Task {
	switch id {
	case ColumnToDo:
		return p.ToDo
	case ColumnInProgress:
		return p.InProgress
	case ColumnDone:
		return p.Done
	}
	return nil
}

func (p Projection) Counts() map[ColumnID]int {
	return map[ColumnID]int{
		ColumnToDo:       len(p.ToDo),
		ColumnInProgress: len(p.InProgress),
		ColumnDone:       len(p.Done),
	}
}

func (p Projection) Len() int {
	return len(p.ToDo) + len(p.InProgress) + len(p.Done)
}
