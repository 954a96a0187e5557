// Package apitest runs an in-memory stand-in for the remote task API so the
// client can be exercised end to end in tests.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/pkg/respond"
)

const SessionCookie = "token"

type account struct {
	id       string
	name     string
	email    string
	password string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	open     bool
	tasks    []model.Task
	accounts map[string]account
	sessions map[string]string
	failures map[string]int
	gates    map[string]chan struct{}
	calls    map[string]int
}

type Option func(*Server)

// WithOpenAccess serves task routes without a session cookie.
func WithOpenAccess() Option {
	return func(s *Server) { s.open = true }
}

// WithAccount registers a user that can log in.
func WithAccount(name, email, password string) Option {
	return func(s *Server) {
		s.accounts[strings.ToLower(email)] = account{id: uuid.NewString(), name: name, email: email, password: password}
	}
}

func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		accounts: make(map[string]account),
		sessions: make(map[string]string),
		failures: make(map[string]int),
		gates:    make(map[string]chan struct{}),
		calls:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/signup", s.signup)
			r.Post("/logout", s.logout)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Use(s.count, s.authenticate, s.inject)
			r.Get("/", s.listTasks)
			r.Post("/", s.createTask)
			r.Put("/{id}", s.updateTask)
			r.Delete("/{id}", s.deleteTask)
		})
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Seed stores tasks verbatim, ids included.
func (s *Server) Seed(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, tasks...)
}

func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Fail makes every task request with the given method answer with code.
func (s *Server) Fail(method string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = code
}

func (s *Server) Recover(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method)
}

// Hold blocks task requests with the given method until a value is sent on
// the returned channel, one request per value.
func (s *Server) Hold(method string) chan<- struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gates[method] = gate
	return gate
}

// Calls counts task requests received for method, including rejected ones.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// ExpireSessions drops every login, so the next task call answers 401.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]string)
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		open := s.open
		s.mu.Unlock()

		if !open && s.sessionUser(r) == "" {
			respond.Error(w, r, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		code := s.failures[r.Method]
		gate := s.gates[r.Method]
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if code != 0 {
			respond.Error(w, r, code, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionUser(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[c.Value]
}
