package board

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow/internal/dispatch"
	"github.com/BuzzLyutic/taskflow/internal/gateway"
	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/internal/session"
	"github.com/BuzzLyutic/taskflow/internal/store"
)

// MockUpdater - mock of the remote task API
type MockUpdater struct {
	mock.Mock
}

func (m *MockUpdater) Update(ctx context.Context, id string, t model.Task) (model.Task, error) {
	args := m.Called(ctx, id, t)
	return args.Get(0).(model.Task), args.Error(1)
}

type dragFixture struct {
	store    *store.TaskStore
	api      *MockUpdater
	ctrl     *DragController
	failures []error
}

func newDragFixture(t *testing.T, onFailure func(error)) *dragFixture {
	t.Helper()
	loop := dispatch.NewLoop(zap.NewNop(), 8)
	loop.Start(context.Background())
	t.Cleanup(loop.Stop)

	f := &dragFixture{store: store.New(), api: new(MockUpdater)}
	f.store.ReplaceAll([]model.Task{
		{ID: "1", Title: "one", Status: model.StatusToDo, Priority: model.PriorityLow},
		{ID: "2", Title: "two", Status: model.StatusDone, Priority: model.PriorityHigh},
	})
	if onFailure == nil {
		onFailure = func(err error) { f.failures = append(f.failures, err) }
	}
	f.ctrl = NewDragController(f.store, f.api, loop, onFailure, zap.NewNop())
	return f
}

func TestDragController_DropOnColumnSucceeds(t *testing.T) {
	f := newDragFixture(t, nil)

	f.api.On("Update", mock.Anything, "1", mock.MatchedBy(func(t model.Task) bool {
		return t.ID == "1" && t.Status == model.StatusDone && t.Title == "one"
	})).Return(model.Task{ID: "1", Title: "one", Status: model.StatusDone, Priority: model.PriorityLow}, nil).Once()

	src := Location{Column: ColumnToDo, Index: 0}
	f.ctrl.OnDragStart(src)
	require.Equal(t, Dragging, f.ctrl.State())

	fut, err := f.ctrl.OnDragEnd(context.Background(), src, &Location{Column: ColumnDone, Index: 1})
	require.NoError(t, err)
	require.NotNil(t, fut)
	assert.Equal(t, Idle, f.ctrl.State())

	_, err = fut.Await(context.Background())
	require.NoError(t, err)

	p := Project(f.store.Tasks(), "")
	assert.Empty(t, p.ToDo)
	assert.Equal(t, []string{"1", "2"}, ids(p.Done), "done column follows store order")
	assert.Equal(t, []string{"1", "2"}, ids(f.store.Tasks()), "updated task keeps its store position")
	f.api.AssertExpectations(t)
}

func TestDragController_ServerEchoWins(t *testing.T) {
	f := newDragFixture(t, nil)

	f.api.On("Update", mock.Anything, "1", mock.Anything).
		Return(model.Task{ID: "1", Title: "one (edited elsewhere)", Status: model.StatusInProgress, Priority: model.PriorityHigh}, nil)

	fut, err := f.ctrl.OnDragEnd(context.Background(), Location{Column: ColumnToDo}, &Location{Column: ColumnInProgress})
	require.NoError(t, err)
	_, err = fut.Await(context.Background())
	require.NoError(t, err)

	got, ok := f.store.Get("1")
	require.True(t, ok)
	assert.Equal(t, "one (edited elsewhere)", got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)
}

func TestDragController_ServerErrorLeavesStore(t *testing.T) {
	f := newDragFixture(t, nil)
	before := f.store.Tasks()

	f.api.On("Update", mock.Anything, "1", mock.Anything).
		Return(model.Task{}, &gateway.HTTPError{StatusCode: http.StatusInternalServerError})

	fut, err := f.ctrl.OnDragEnd(context.Background(), Location{Column: ColumnToDo}, &Location{Column: ColumnDone})
	require.NoError(t, err)
	_, err = fut.Await(context.Background())
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusOf(err))

	assert.Equal(t, before, f.store.Tasks())
	p := Project(f.store.Tasks(), "")
	assert.Equal(t, []string{"1"}, ids(p.ToDo))
	require.Len(t, f.failures, 1)
}

type countingNavigator struct{ calls int }

func (n *countingNavigator) ToLogin() { n.calls++ }

func TestDragController_UnauthorizedLogsOutOnce(t *testing.T) {
	sess, err := session.New("http://localhost:3000", nil)
	require.NoError(t, err)
	sess.Init(session.User{Email: "ada@example.com"})
	nav := &countingNavigator{}
	guard := session.NewGuard(sess, nav, zap.NewNop())

	var surfaced []error
	f := newDragFixture(t, func(err error) {
		if guard.Check(err) {
			return
		}
		surfaced = append(surfaced, err)
	})
	before := f.store.Tasks()

	f.api.On("Update", mock.Anything, "1", mock.Anything).
		Return(model.Task{}, &gateway.HTTPError{StatusCode: http.StatusUnauthorized})

	fut, err := f.ctrl.OnDragEnd(context.Background(), Location{Column: ColumnToDo}, &Location{Column: ColumnDone})
	require.NoError(t, err)
	_, _ = fut.Await(context.Background())

	assert.Equal(t, before, f.store.Tasks())
	assert.Equal(t, 1, nav.calls)
	assert.False(t, sess.Active())
	assert.Empty(t, surfaced)
}

func TestDragController_DropOutsideIsNoop(t *testing.T) {
	f := newDragFixture(t, nil)
	before := f.store.Tasks()

	src := Location{Column: ColumnToDo, Index: 0}
	f.ctrl.OnDragStart(src)
	fut, err := f.ctrl.OnDragEnd(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Nil(t, fut)
	assert.Equal(t, Idle, f.ctrl.State())

	assert.Equal(t, before, f.store.Tasks())
	f.api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDragController_InvalidSource(t *testing.T) {
	tests := []struct {
		name    string
		src     Location
		dest    Location
		wantErr error
	}{
		{name: "index past end", src: Location{Column: ColumnToDo, Index: 1}, dest: Location{Column: ColumnDone}, wantErr: ErrInvalidDrag},
		{name: "negative index", src: Location{Column: ColumnDone, Index: -1}, dest: Location{Column: ColumnToDo}, wantErr: ErrInvalidDrag},
		{name: "unknown source column", src: Location{Column: "backlog"}, dest: Location{Column: ColumnDone}, wantErr: ErrInvalidDrag},
		{name: "unknown destination", src: Location{Column: ColumnToDo}, dest: Location{Column: "archive"}, wantErr: ErrUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDragFixture(t, nil)
			dest := tt.dest
			fut, err := f.ctrl.OnDragEnd(context.Background(), tt.src, &dest)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, fut)
			assert.Equal(t, Idle, f.ctrl.State())
			f.api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDragController_IndexResolvesAgainstFilteredColumn(t *testing.T) {
	f := newDragFixture(t, nil)
	f.store.ReplaceAll([]model.Task{
		{ID: "a", Title: "groceries", Status: model.StatusToDo, Priority: model.PriorityLow},
		{ID: "b", Title: "taxes", Status: model.StatusToDo, Priority: model.PriorityLow},
	})
	f.ctrl.SetSearch("tax")

	f.api.On("Update", mock.Anything, "b", mock.Anything).
		Return(model.Task{ID: "b", Title: "taxes", Status: model.StatusInProgress, Priority: model.PriorityLow}, nil)

	fut, err := f.ctrl.OnDragEnd(context.Background(), Location{Column: ColumnToDo, Index: 0}, &Location{Column: ColumnInProgress})
	require.NoError(t, err)
	_, err = fut.Await(context.Background())
	require.NoError(t, err)

	got, _ := f.store.Get("b")
	assert.Equal(t, model.StatusInProgress, got.Status)
	f.api.AssertExpectations(t)
}

func TestDragController_Source(t *testing.T) {
	f := newDragFixture(t, nil)
	_, ok := f.ctrl.Source()
	assert.False(t, ok)

	f.ctrl.OnDragStart(Location{Column: ColumnDone, Index: 0})
	src, ok := f.ctrl.Source()
	require.True(t, ok)
	assert.Equal(t, ColumnDone, src.Column)
	assert.Equal(t, "dragging", f.ctrl.State().String())
}
