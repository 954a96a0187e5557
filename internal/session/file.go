package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fileCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type fileData struct {
	APIURL  string       `yaml:"api_url"`
	User    User         `yaml:"user"`
	Cookies []fileCookie `yaml:"cookies"`
}

// Open returns a session bound to path. When the file exists and was written
// for the same API, the saved user and cookies are restored.
func Open(baseURL, path string, logger *zap.Logger) (*Session, error) {
	s, err := New(baseURL, logger)
	if err != nil {
		return nil, err
	}
	s.file = path

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var data fileData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse session file (%s): %w", path, err)
	}
	if data.APIURL != baseURL {
		s.logger.Info("ignoring session saved for another api", zap.String("saved", data.APIURL))
		return s, nil
	}

	cookies := make([]*http.Cookie, 0, len(data.Cookies))
	for _, c := range data.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.jar.SetCookies(s.base, cookies)
	user := data.User
	s.user = &user
	return s, nil
}

// Save writes the signed-in user and its cookies to the session file.
func (s *Session) Save() error {
	s.mu.RLock()
	file := s.file
	user := s.user
	cookies := s.jar.Cookies(s.base)
	base := s.base.String()
	s.mu.RUnlock()

	if file == "" {
		return nil
	}
	if user == nil {
		return ErrNotLoggedIn
	}

	data := fileData{APIURL: base, User: *user}
	for _, c := range cookies {
		data.Cookies = append(data.Cookies, fileCookie{Name: c.Name, Value: c.Value})
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return err
	}
	return os.WriteFile(file, out, 0o600)
}
