package store

import (
	"errors"
	"sync"

	"github.com/BuzzLyutic/taskflow/internal/model"
)

var (
	ErrDuplicateID = errors.New("duplicate task id")
)

// TaskStore is the ordered, in-memory list of tasks the board is drawn from.
// It is changed only through ReplaceAll, Add, Update and Remove.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []model.Task
}

func New() *TaskStore {
	return &TaskStore{}
}

func (s *TaskStore) ReplaceAll(tasks []model.Task) {
	next := make([]model.Task, len(tasks))
	copy(next, tasks)

	s.mu.Lock()
	s.tasks = next
	s.mu.Unlock()
}

func (s *TaskStore) Add(t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(t.ID) >= 0 {
		return ErrDuplicateID
	}
	s.tasks = append(s.tasks, t)
	return nil
}

// Update replaces the task with the same id in place and reports whether it
// was found. There is no version check: the last call wins.
func (s *TaskStore) Update(t model.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t.ID)
	if i < 0 {
		return false
	}
	s.tasks[i] = t
	return true
}

func (s *TaskStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return true
}

func (s *TaskStore) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// Tasks returns a copy of the current contents in store order.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
