package dispatch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("dispatch loop stopped")

// Loop runs posted closures one at a time, in posting order, on a single
// goroutine. Everything that mutates board state runs here.
type Loop struct {
	logger *zap.Logger
	queue  chan func()
	stop   chan struct{}
	done   chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

func NewLoop(logger *zap.Logger, backlog int) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backlog < 1 {
		backlog = 1
	}
	return &Loop{
		logger: logger,
		queue:  make(chan func(), backlog),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true

	l.logger.Debug("starting dispatch loop")
	go l.run(ctx)
}

// Stop runs whatever is already queued and ends the loop. Completions of
// requests still in flight are dropped; their futures fail with ErrStopped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped || !l.started {
		l.stopped = true
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()

	l.wg.Wait()
	close(l.stop)
	<-l.done
	l.logger.Debug("dispatch loop stopped")
}

// Post queues fn. It blocks only while the backlog is full.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.wg.Add(1)
	l.mu.Unlock()
	defer l.wg.Done()

	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case fn := <-l.queue:
			l.exec(fn)
		case <-l.stop:
			l.drain()
			return
		case <-ctx.Done():
			l.shutdown()
			return
		}
	}
}

// shutdown refuses new posts, then keeps running closures until every Post
// already past the stopped check has landed.
func (l *Loop) shutdown() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(idle)
	}()

	for {
		select {
		case fn := <-l.queue:
			l.exec(fn)
		case <-idle:
			l.drain()
			l.logger.Debug("dispatch loop stopped by context")
			return
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.queue:
			l.exec(fn)
		default:
			return
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch callback panicked", zap.Any("panic", r))
		}
	}()
	fn()
}
