package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"TASKFLOW_API_URL", "VITE_BACKEND_BASE_URL", "TASKFLOW_TIMEOUT", "TASKFLOW_SESSION_FILE", "TASKFLOW_LOG_FILE"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.RequestTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "session.yaml", filepath.Base(cfg.SessionFile))
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "api_url: http://tasks.internal:8080\nrequest_timeout: 3s\nlog_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://tasks.internal:8080", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("VITE_BACKEND_BASE_URL", "http://vite:3000")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://vite:3000", cfg.APIURL)

	t.Setenv("TASKFLOW_API_URL", "https://api.example.com")
	t.Setenv("TASKFLOW_TIMEOUT", "250ms")
	t.Setenv("TASKFLOW_SESSION_FILE", "/tmp/tf-session.yaml")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/tf-session.yaml", cfg.SessionFile)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "api_url: [oops"},
		{name: "relative url", body: "api_url: localhost"},
		{name: "zero timeout", body: "request_timeout: 0s"},
		{name: "bad env timeout", env: map[string]string{"TASKFLOW_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
