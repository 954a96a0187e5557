package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow/internal/board"
	"github.com/BuzzLyutic/taskflow/internal/dispatch"
	"github.com/BuzzLyutic/taskflow/internal/gateway"
	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/internal/store"
)

// TaskAPI is the remote task store as the board sees it.
type TaskAPI interface {
	FetchAll(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, d model.Draft) (model.Task, error)
	Update(ctx context.Context, id string, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// AuthGuard reports whether err was an auth failure it already handled.
type AuthGuard interface {
	Check(err error) bool
}

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateLoggedOut:
		return "logged out"
	}
	return "loading"
}

type Options struct {
	API      TaskAPI
	Store    *store.TaskStore
	Loop     *dispatch.Loop
	Guard    AuthGuard
	Notifier Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

// BoardService wires the task list to the remote API. Only a successful
// response changes the store, and store changes only happen on the loop.
type BoardService struct {
	api      TaskAPI
	store    *store.TaskStore
	loop     *dispatch.Loop
	guard    AuthGuard
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	drag     *board.DragController

	mu      sync.Mutex
	state   State
	loadErr error
}

func NewBoardService(opts Options) *BoardService {
	s := &BoardService{
		api:      opts.API,
		store:    opts.Store,
		loop:     opts.Loop,
		guard:    opts.Guard,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.store == nil {
		s.store = store.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.drag = board.NewDragController(s.store, s.api, s.loop, s.handleError, s.logger)
	return s
}

// Load performs the initial fetch. On failure other than 401 the board goes
// to StateFailed and shows nothing but the error.
func (s *BoardService) Load(ctx context.Context) *dispatch.Future[[]model.Task] {
	s.setState(StateLoading, nil)

	return dispatch.Run(s.loop, ctx, s.api.FetchAll, func(tasks []model.Task, err error) {
		if err != nil {
			if s.guard != nil && s.guard.Check(err) {
				s.setState(StateLoggedOut, err)
				return
			}
			s.logger.Error("initial fetch failed", zap.Error(err))
			s.setState(StateFailed, err)
			return
		}
		s.store.ReplaceAll(tasks)
		s.setState(StateReady, nil)
	})
}

func (s *BoardService) AddDefaultTask(ctx context.Context) (*dispatch.Future[model.Task], error) {
	return s.AddTask(ctx, model.DefaultDraft(s.now()))
}

func (s *BoardService) AddTask(ctx context.Context, d model.Draft) (*dispatch.Future[model.Task], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	return dispatch.Run(s.loop, ctx,
		func(ctx context.Context) (model.Task, error) { return s.api.Create(ctx, d) },
		func(t model.Task, err error) {
			if err != nil {
				s.handleError(err)
				return
			}
			if err := s.store.Add(t); err != nil {
				s.logger.Error("created task already in store", zap.String("task_id", t.ID), zap.Error(err))
				return
			}
			s.notify(true, "Task created")
		},
	), nil
}

func (s *BoardService) EditTask(ctx context.Context, t model.Task) (*dispatch.Future[model.Task], error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return dispatch.Run(s.loop, ctx,
		func(ctx context.Context) (model.Task, error) { return s.api.Update(ctx, t.ID, t) },
		func(echoed model.Task, err error) {
			if err != nil {
				s.handleError(err)
				return
			}
			s.store.Update(echoed)
		},
	), nil
}

func (s *BoardService) DeleteTask(ctx context.Context, id string) *dispatch.Future[string] {
	return dispatch.Run(s.loop, ctx,
		func(ctx context.Context) (string, error) { return id, s.api.Delete(ctx, id) },
		func(id string, err error) {
			if err != nil {
				s.handleError(err)
				return
			}
			s.store.Remove(id)
			s.notify(true, "Task deleted")
		},
	)
}

// Board projects the current store through the search term.
func (s *BoardService) Board(search string) board.Projection {
	return board.Project(s.store.Tasks(), search)
}

func (s *BoardService) Task(id string) (model.Task, bool) {
	return s.store.Get(id)
}

func (s *BoardService) Drag() *board.DragController {
	return s.drag
}

func (s *BoardService) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.loadErr
}

func (s *BoardService) setState(st State, err error) {
	s.mu.Lock()
	s.state = st
	s.loadErr = err
	s.mu.Unlock()
}

// handleError is the single place failed calls end up: 401 goes to the
// guard, everything else becomes a dismissible notification.
func (s *BoardService) handleError(err error) {
	switch {
	case err == nil:
		return
	case s.guard != nil && s.guard.Check(err):
		s.setState(StateLoggedOut, err)
	case errors.Is(err, context.Canceled):
		s.logger.Debug("request canceled", zap.Error(err))
	default:
		s.logger.Warn("task request failed", zap.Int("status", gateway.StatusOf(err)), zap.Error(err))
		s.notify(false, gateway.Message(err))
	}
}

func (s *BoardService) notify(ok bool, msg string) {
	if s.notifier == nil {
		return
	}
	if ok {
		s.notifier.Success(msg)
		return
	}
	s.notifier.Error(msg)
}
