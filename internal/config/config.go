package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL  = "http://localhost:3000"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	SessionFile    string        `yaml:"session_file"`
	LogLevel       string        `yaml:"log_level"`
	// LogFile receives logs instead of stderr when set. The interactive
	// board logs nowhere without it.
	LogFile        string        `yaml:"log_file"`
}

func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultTimeout,
		SessionFile:    filepath.Join(baseDir(), "session.yaml"),
		LogLevel:       "warn",
	}
}

// DefaultPath is where Load looks when no config file is given.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// Load layers defaults, the YAML file at path and the environment. A missing
// file is only an error when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg.APIURL = getEnv("TASKFLOW_API_URL", getEnv("VITE_BACKEND_BASE_URL", cfg.APIURL))
	cfg.SessionFile = getEnv("TASKFLOW_SESSION_FILE", cfg.SessionFile)
	cfg.LogFile = getEnv("TASKFLOW_LOG_FILE", cfg.LogFile)
	if v := getEnv("TASKFLOW_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("TASKFLOW_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.SessionFile == "" {
		return errors.New("session file path is empty")
	}
	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func baseDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskflow"
	}
	return filepath.Join(dir, "taskflow")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
