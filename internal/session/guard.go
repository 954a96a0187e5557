package session

import (
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow/internal/gateway"
)

// Navigator sends the user to the login screen.
type Navigator interface {
	ToLogin()
}

type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// Guard turns a 401 from any task call into a forced logout.
type Guard struct {
	session *Session
	nav     Navigator
	logger  *zap.Logger
}

func NewGuard(s *Session, nav Navigator, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{session: s, nav: nav, logger: logger}
}

// Check reports whether err was an auth failure and, if so, has already
// logged the user out.
func (g *Guard) Check(err error) bool {
	if !gateway.IsUnauthorized(err) {
		return false
	}
	g.logger.Warn("session rejected by api, logging out", zap.Error(err))
	g.session.Teardown()
	if g.nav != nil {
		g.nav.ToLogin()
	}
	return true
}
