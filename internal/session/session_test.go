package session_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow/internal/apitest"
	"github.com/BuzzLyutic/taskflow/internal/gateway"
	"github.com/BuzzLyutic/taskflow/internal/session"
)

const (
	email    = "ada@example.com"
	password = "correct-horse"
)

type fixture struct {
	api     *apitest.Server
	session *session.Session
	client  *gateway.Client
	auth    *session.AuthClient
}

func setup(t *testing.T, file string) fixture {
	t.Helper()
	api := apitest.New(t, apitest.WithAccount("Ada", email, password))

	var (
		s   *session.Session
		err error
	)
	if file == "" {
		s, err = session.New(api.URL, zap.NewNop())
	} else {
		s, err = session.Open(api.URL, file, zap.NewNop())
	}
	require.NoError(t, err)

	c, err := gateway.New(gateway.Options{BaseURL: api.URL, Jar: s, Timeout: 5 * time.Second})
	require.NoError(t, err)

	return fixture{api: api, session: s, client: c, auth: session.NewAuthClient(c, s, zap.NewNop())}
}

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   session.Credentials
		wantErr error
	}{
		{name: "ok", creds: session.Credentials{Email: email, Password: password}},
		{name: "bad email", creds: session.Credentials{Email: "ada", Password: password}, wantErr: session.ErrInvalidEmail},
		{name: "display name is not an email", creds: session.Credentials{Email: "Ada <ada@example.com>", Password: password}, wantErr: session.ErrInvalidEmail},
		{name: "short password", creds: session.Credentials{Email: email, Password: "1234567"}, wantErr: session.ErrPasswordTooWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.ErrorIs(t, session.SignupRequest{Email: email, Password: password}.Validate(), session.ErrNameRequired)
}

func TestAuthClient_LoginLogout(t *testing.T) {
	f := setup(t, "")
	ctx := context.Background()

	_, err := f.client.FetchAll(ctx)
	require.True(t, gateway.IsUnauthorized(err))

	u, err := f.auth.Login(ctx, session.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.True(t, f.session.Active())

	_, err = f.client.FetchAll(ctx)
	require.NoError(t, err, "login cookie should authorize task calls")

	require.NoError(t, f.auth.Logout(ctx))
	assert.False(t, f.session.Active())
	_, err = f.session.User()
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)

	_, err = f.client.FetchAll(ctx)
	assert.True(t, gateway.IsUnauthorized(err))
}

func TestAuthClient_LoginRejected(t *testing.T) {
	f := setup(t, "")

	_, err := f.auth.Login(context.Background(), session.Credentials{Email: email, Password: "wrong-password"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", gateway.Message(err))
	assert.False(t, f.session.Active())
}

func TestAuthClient_LoginValidatesBeforeCalling(t *testing.T) {
	f := setup(t, "")

	_, err := f.auth.Login(context.Background(), session.Credentials{Email: "nope", Password: password})
	assert.ErrorIs(t, err, session.ErrInvalidEmail)
	assert.False(t, f.session.Active())
}

func TestAuthClient_Signup(t *testing.T) {
	f := setup(t, "")
	ctx := context.Background()

	u, err := f.auth.Signup(ctx, session.SignupRequest{Name: "Grace", Email: "grace@example.com", Password: "hopper-1906"})
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", u.Email)

	_, err = f.client.FetchAll(ctx)
	assert.NoError(t, err)

	_, err = f.auth.Signup(ctx, session.SignupRequest{Name: "Grace", Email: "grace@example.com", Password: "hopper-1906"})
	assert.Equal(t, http.StatusBadRequest, gateway.StatusOf(err))
}

func TestSession_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	f := setup(t, path)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, session.Credentials{Email: email, Password: password})
	require.NoError(t, err)
	require.NoError(t, f.session.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored, err := session.Open(f.api.URL, path, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, restored.Active())

	c, err := gateway.New(gateway.Options{BaseURL: f.api.URL, Jar: restored})
	require.NoError(t, err)
	_, err = c.FetchAll(ctx)
	require.NoError(t, err, "restored cookies should still be accepted")

	restored.Teardown()
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSession_OpenIgnoresOtherAPI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://elsewhere:3000\nuser:\n  email: x@y.z\n"), 0o600))

	s, err := session.Open("http://localhost:3000", path, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, s.Active())
}

func TestSession_SaveRequiresLogin(t *testing.T) {
	s, err := session.Open("http://localhost:3000", filepath.Join(t.TempDir(), "s.yaml"), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Save(), session.ErrNotLoggedIn)
}

type recordingNavigator struct{ calls int }

func (n *recordingNavigator) ToLogin() { n.calls++ }

func TestGuard_Check(t *testing.T) {
	s, err := session.New("http://localhost:3000", nil)
	require.NoError(t, err)
	s.Init(session.User{Email: email})

	nav := &recordingNavigator{}
	g := session.NewGuard(s, nav, zap.NewNop())

	assert.False(t, g.Check(&gateway.HTTPError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, g.Check(errors.New("connection refused")))
	assert.True(t, s.Active())
	assert.Equal(t, 0, nav.calls)

	assert.True(t, g.Check(&gateway.HTTPError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, s.Active())
	assert.Equal(t, 1, nav.calls)
}
