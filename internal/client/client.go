// Package client talks to a taskdesk API server. It implements
// activity.Source and mirrors the write operations of the desk services,
// running the lifecycle engine locally first so obviously invalid requests
// fail without a round trip. The server's answer is the one that counts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// Client is an API client bound to one bearer token.
type Client struct {
	baseURL  *url.URL
	token    string
	http     *http.Client
	engine   *task.Engine
	log      zerolog.Logger
	precheck bool

	meOnce sync.Once
	me     user.User
	meErr  error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "client").Logger() }
}

// WithoutPrecheck disables the local engine checks before writes.
func WithoutPrecheck() Option {
	return func(c *Client) { c.precheck = false }
}

// New creates a client for the server at baseURL.
func New(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL:  u,
		token:    token,
		http:     &http.Client{Timeout: timeout},
		engine:   task.NewEngine(),
		log:      zerolog.Nop(),
		precheck: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do sends a request and decodes a JSON response into out when non-nil.
// Non-2xx responses are decoded into the matching domain error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api request")

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body api.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("server returned %s: %s", resp.Status, msg)
	}
	return body.Err()
}

// Me returns the user the token was issued for. The result is cached for
// the life of the client.
func (c *Client) Me(ctx context.Context) (user.User, error) {
	c.meOnce.Do(func() {
		c.meErr = c.do(ctx, http.MethodGet, "/api/me", nil, nil, &c.me)
	})
	return c.me, c.meErr
}

// checkLocally runs fn against the current server copy of the task. Any
// lifecycle error is returned as-is; transport errors skip the check.
func (c *Client) checkLocally(ctx context.Context, taskID string, fn func(*task.Task, user.Ref) error) error {
	if !c.precheck {
		return nil
	}

	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	t, err := c.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return err
		}
		c.log.Debug().Err(err).Msg("precheck skipped")
		return nil
	}

	scratch := t.Clone()
	return fn(&scratch, me.Ref())
}
