package session

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
)

type User struct {
	ID    string `json:"_id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// Session is the explicit replacement for a global auth store. It owns the
// cookie jar used by every API call and knows who is signed in. It is
// established by Init after login and cleared by Teardown.
type Session struct {
	mu     sync.RWMutex
	base   *url.URL
	jar    *cookiejar.Jar
	user   *User
	file   string
	logger *zap.Logger
}

func New(baseURL string, logger *zap.Logger) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Session{base: u, jar: jar, logger: logger}, nil
}

func (s *Session) Init(u User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.logger.Info("session established", zap.String("email", u.Email))
}

// Teardown forgets the user and every cookie. A file backed session also
// deletes its file.
func (s *Session) Teardown() {
	s.mu.Lock()
	jar, _ := cookiejar.New(nil)
	s.jar = jar
	s.user = nil
	file := s.file
	s.mu.Unlock()

	if file != "" {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove session file", zap.String("path", file), zap.Error(err))
		}
	}
	s.logger.Info("session torn down")
}

func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) User() (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, ErrNotLoggedIn
	}
	return *s.user, nil
}

// SetCookies and Cookies make Session an http.CookieJar whose backing jar is
// swapped out on Teardown.
func (s *Session) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	jar.SetCookies(u, cookies)
}

func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	return jar.Cookies(u)
}
