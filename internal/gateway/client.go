package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskflow/internal/model"
)

const apiPrefix = "/api/v1"

type Options struct {
	BaseURL string
	Jar     http.CookieJar
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client talks to the remote task API. Each method is a single round trip:
// no retries, no caching.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:   strings.TrimRight(opts.BaseURL, "/") + apiPrefix,
		http:   &http.Client{Jar: opts.Jar, Timeout: opts.Timeout},
		logger: logger,
	}, nil
}

func (c *Client) FetchAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.Do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	var t model.Task
	err := c.Do(ctx, http.MethodPost, "/tasks", d, &t)
	return t, err
}

// Update sends the full record and returns what the server stored.
func (c *Client) Update(ctx context.Context, id string, t model.Task) (model.Task, error) {
	var out model.Task
	err := c.Do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), t, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// Do performs one JSON request against path (relative to /api/v1). A nil out
// discards the response body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// readMessage pulls a human readable reason out of an error body shaped like
// {"message": "..."} or {"error": "..."}.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
