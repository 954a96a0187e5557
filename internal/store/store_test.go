package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskflow/internal/model"
)

func seed() []model.Task {
	return []model.Task{
		{ID: "1", Title: "First", Status: model.StatusToDo, Priority: model.PriorityLow},
		{ID: "2", Title: "Second", Status: model.StatusDone, Priority: model.PriorityHigh},
		{ID: "3", Title: "Third", Status: model.StatusInProgress, Priority: model.PriorityMedium},
	}
}

func TestTaskStore_ReplaceAll(t *testing.T) {
	s := New()
	s.ReplaceAll(seed())
	require.Equal(t, 3, s.Len())

	in := []model.Task{{ID: "9", Title: "Only"}}
	s.ReplaceAll(in)
	in[0].Title = "mutated by caller"

	got := s.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, "Only", got[0].Title)
}

func TestTaskStore_Add(t *testing.T) {
	s := New()
	s.ReplaceAll(seed())

	require.NoError(t, s.Add(model.Task{ID: "4", Title: "Fourth"}))
	assert.Equal(t, "4", s.Tasks()[3].ID)

	err := s.Add(model.Task{ID: "2", Title: "Dup"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 4, s.Len())
	got, _ := s.Get("2")
	assert.Equal(t, "Second", got.Title)
}

func TestTaskStore_Update(t *testing.T) {
	t.Run("keeps position", func(t *testing.T) {
		s := New()
		s.ReplaceAll(seed())

		ok := s.Update(model.Task{ID: "1", Title: "First", Status: model.StatusDone})
		require.True(t, ok)

		tasks := s.Tasks()
		assert.Equal(t, "1", tasks[0].ID)
		assert.Equal(t, model.StatusDone, tasks[0].Status)
	})

	t.Run("missing id leaves store unchanged", func(t *testing.T) {
		s := New()
		s.ReplaceAll(seed())
		before := s.Tasks()

		ok := s.Update(model.Task{ID: "404", Title: "Ghost"})
		assert.False(t, ok)
		assert.Equal(t, before, s.Tasks())
	})
}

func TestTaskStore_Remove(t *testing.T) {
	once := New()
	once.ReplaceAll(seed())
	assert.True(t, once.Remove("2"))

	twice := New()
	twice.ReplaceAll(seed())
	twice.Remove("2")
	assert.False(t, twice.Remove("2"))

	assert.Equal(t, once.Tasks(), twice.Tasks())
	assert.Equal(t, []string{"1", "3"}, ids(twice.Tasks()))
}

func TestTaskStore_TasksIsACopy(t *testing.T) {
	s := New()
	s.ReplaceAll(seed())

	snapshot := s.Tasks()
	s.Remove("1")
	assert.Len(t, snapshot, 3)
	assert.Equal(t, "1", snapshot[0].ID)
}

func TestTaskStore_ConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Add(model.Task{ID: fmt.Sprintf("t-%d", i), Title: "x"})
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Tasks()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
