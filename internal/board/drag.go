package board

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow/internal/dispatch"
	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/internal/store"
)

var ErrInvalidDrag = errors.New("invalid drag source")

type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Location is a position on the board as the user sees it: a column and an
// index into that column's (filtered) list.
type Location struct {
	Column ColumnID
	Index  int
}

// DragEndHandler is all a gesture recogniser needs from the board. A nil
// destination means the item was dropped outside every column.
type DragEndHandler interface {
	OnDragEnd(ctx context.Context, source Location, dest *Location) (*dispatch.Future[model.Task], error)
}

// Updater is the remote call a drop turns into.
type Updater interface {
	Update(ctx context.Context, id string, t model.Task) (model.Task, error)
}

// DragController turns a finished drag into one status update. The store is
// only touched after the server confirms, with the record it echoed.
type DragController struct {
	store     *store.TaskStore
	api       Updater
	loop      *dispatch.Loop
	onFailure func(error)
	logger    *zap.Logger

	mu     sync.Mutex
	state  DragState
	search string
	source *Location
}

var _ DragEndHandler = (*DragController)(nil)

func NewDragController(s *store.TaskStore, api Updater, loop *dispatch.Loop, onFailure func(error), logger *zap.Logger) *DragController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if onFailure == nil {
		onFailure = func(error) {}
	}
	return &DragController{store: s, api: api, loop: loop, onFailure: onFailure, logger: logger}
}

// SetSearch tells the controller which filter the user is looking at, so
// drag indices resolve against the same lists.
func (c *DragController) SetSearch(term string) {
	c.mu.Lock()
	c.search = term
	c.mu.Unlock()
}

func (c *DragController) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Source is where the current drag started, if one is in progress.
func (c *DragController) Source() (Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		return Location{}, false
	}
	return *c.source, true
}

func (c *DragController) OnDragStart(source Location) {
	c.mu.Lock()
	c.state = Dragging
	c.source = &source
	c.mu.Unlock()
}

// OnDragEnd always returns the controller to Idle. It returns a nil future
// when nothing was sent: the drop landed outside every column.
func (c *DragController) OnDragEnd(ctx context.Context, source Location, dest *Location) (*dispatch.Future[model.Task], error) {
	c.mu.Lock()
	c.state = Idle
	c.source = nil
	search := c.search
	c.mu.Unlock()

	if dest == nil {
		return nil, nil
	}

	destCol, err := ColumnByID(dest.Column)
	if err != nil {
		return nil, err
	}
	visible := Project(c.store.Tasks(), search).Tasks(source.Column)
	if visible == nil || source.Index < 0 || source.Index >= len(visible) {
		return nil, ErrInvalidDrag
	}

	moved := visible[source.Index]
	moved.Status = destCol.Status

	c.logger.Debug("task dropped",
		zap.String("task_id", moved.ID),
		zap.String("from", string(source.Column)),
		zap.String("to", string(destCol.ID)),
	)

	return dispatch.Run(c.loop, ctx,
		func(ctx context.Context) (model.Task, error) {
			return c.api.Update(ctx, moved.ID, moved)
		},
		func(echoed model.Task, err error) {
			if err != nil {
				c.onFailure(err)
				return
			}
			c.store.Update(echoed)
		},
	), nil
}
