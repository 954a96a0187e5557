package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Center keeps transient notifications until they are dismissed.
type Center struct {
	mu     sync.Mutex
	items  []Notification
	logger *zap.Logger
	now    func() time.Time
}

func NewCenter(logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{logger: logger, now: time.Now}
}

func (c *Center) Success(msg string) {
	c.push(LevelSuccess, msg)
}

func (c *Center) Error(msg string) {
	c.push(LevelError, msg)
}

func (c *Center) push(level Level, msg string) {
	n := Notification{ID: uuid.NewString(), Level: level, Message: msg, At: c.now()}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	c.logger.Debug("notification", zap.String("level", string(level)), zap.String("message", msg))
}

func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Pending lists notifications oldest first without removing them.
func (c *Center) Pending() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Drain returns and clears every pending notification.
func (c *Center) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	return out
}
