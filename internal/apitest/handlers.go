package apitest

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/pkg/respond"
)

type userBody struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || acc.password != req.Password {
		respond.Error(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.startSession(w, acc)
	respond.JSON(w, r, http.StatusOK, userBody{ID: acc.id, Name: acc.name, Email: acc.email})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	key := strings.ToLower(req.Email)
	s.mu.Lock()
	if _, exists := s.accounts[key]; exists {
		s.mu.Unlock()
		respond.Error(w, r, http.StatusBadRequest, "User already exists")
		return
	}
	acc := account{id: uuid.NewString(), name: req.Name, email: req.Email, password: req.Password}
	s.accounts[key] = acc
	s.mu.Unlock()

	s.startSession(w, acc)
	respond.JSON(w, r, http.StatusCreated, userBody{ID: acc.id, Name: acc.name, Email: acc.email})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) startSession(w http.ResponseWriter, acc account) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = acc.email
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, s.Tasks())
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := respond.Decode(r, &d); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(d.Title) == "" {
		respond.Error(w, r, http.StatusBadRequest, "Title is required")
		return
	}
	if d.Status == "" {
		d.Status = model.StatusToDo
	}
	if d.Priority == "" {
		d.Priority = model.PriorityMedium
	}

	t := d.Task(uuid.NewString())
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	respond.JSON(w, r, http.StatusCreated, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.Task
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		merged := s.tasks[i]
		if req.Title != "" {
			merged.Title = req.Title
		}
		merged.Description = req.Description
		if req.Status != "" {
			merged.Status = req.Status
		}
		if req.Priority != "" {
			merged.Priority = req.Priority
		}
		merged.DueDate = req.DueDate
		s.tasks[i] = merged
		respond.JSON(w, r, http.StatusOK, merged)
		return
	}
	respond.Error(w, r, http.StatusNotFound, "Task not found")
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			respond.NoContent(w, r)
			return
		}
	}
	respond.Error(w, r, http.StatusNotFound, "Task not found")
}
