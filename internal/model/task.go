package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrValidation = errors.New("validation error")
)

type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParseStatus accepts the wire form ("In Progress") as well as the loose
// spellings people type on a command line ("in-progress", "inprogress", "todo").
func ParseStatus(s string) (Status, error) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "todo":
		return StatusToDo, nil
	case "inprogress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", ErrValidation
}

func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", ErrValidation
}

// Task mirrors the record served by the remote task API. The identifier is
// assigned by the server and never changes.
type Task struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     *Date    `json:"dueDate,omitempty"`
}

// Draft is a task payload that has not been assigned an id yet.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     *Date    `json:"dueDate,omitempty"`
}

// DefaultDraft is what the "New Task" action sends.
func DefaultDraft(now time.Time) Draft {
	today := DateOf(now)
	return Draft{
		Title:       "New Task",
		Description: "Add description...",
		Status:      StatusToDo,
		Priority:    PriorityMedium,
		DueDate:     &today,
	}
}

func (t Task) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}

func (d Draft) Task(id string) Task {
	return Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		DueDate:     d.DueDate,
	}
}

func (d Draft) Validate() error {
	return d.Task("").Validate()
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrValidation
	}
	if !t.Status.Valid() || !t.Priority.Valid() {
		return ErrValidation
	}
	return nil
}

// DueLabel is how an absent due date is shown.
func (t Task) DueLabel() string {
	if t.DueDate == nil || t.DueDate.IsZero() {
		return "Not set"
	}
	return t.DueDate.String()
}
