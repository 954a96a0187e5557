package session

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")
	ErrNameRequired    = errors.New("name is required")
)

const minPasswordLen = 8

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		return ErrInvalidEmail
	}
	if len(c.Password) < minPasswordLen {
		return ErrPasswordTooWeak
	}
	return nil
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	return Credentials{Email: r.Email, Password: r.Password}.Validate()
}

// Doer is the part of the gateway client the auth calls need.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// AuthClient drives the login, signup and logout endpoints and keeps the
// Session in step with them.
type AuthClient struct {
	api     Doer
	session *Session
	logger  *zap.Logger
}

func NewAuthClient(api Doer, s *Session, logger *zap.Logger) *AuthClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthClient{api: api, session: s, logger: logger}
}

func (a *AuthClient) Login(ctx context.Context, c Credentials) (User, error) {
	if err := c.Validate(); err != nil {
		return User{}, err
	}

	var u User
	if err := a.api.Do(ctx, http.MethodPost, "/user/login", c, &u); err != nil {
		a.logger.Warn("login failed", zap.String("email", c.Email), zap.Error(err))
		return User{}, err
	}
	if u.Email == "" {
		u.Email = c.Email
	}
	a.session.Init(u)
	return u, nil
}

func (a *AuthClient) Signup(ctx context.Context, r SignupRequest) (User, error) {
	if err := r.Validate(); err != nil {
		return User{}, err
	}

	var u User
	if err := a.api.Do(ctx, http.MethodPost, "/user/signup", r, &u); err != nil {
		a.logger.Warn("signup failed", zap.String("email", r.Email), zap.Error(err))
		return User{}, err
	}
	if u.Email == "" {
		u.Email = r.Email
	}
	a.session.Init(u)
	return u, nil
}

// Logout invalidates the server session; the local session is only torn
// down once the server confirms.
func (a *AuthClient) Logout(ctx context.Context) error {
	if err := a.api.Do(ctx, http.MethodPost, "/user/logout", nil, nil); err != nil {
		return err
	}
	a.session.Teardown()
	return nil
}
