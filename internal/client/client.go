// Package client talks to the dungeon REST API and drives a session
// Container with the responses, falling back to local content when the
// server cannot be reached.
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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/narrative"
)

// MaxAttempts bounds the tries of one call.
const MaxAttempts = 3

// RetryStep is the delay increment between attempts: 1s, then 2s.
const RetryStep = time.Second

// ErrTransport marks a request that never produced an HTTP response.
var ErrTransport = errors.New("transport failure")

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool { return e.Code >= 500 }

// linearBackOff waits step, 2*step, ... and stops after limit waits.
type linearBackOff struct {
	step  time.Duration
	limit int
	n     int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	if b.n >= b.limit {
		return backoff.Stop
	}
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }

// Client is a REST client for the dungeon API.
type Client struct {
	base   string
	http   *http.Client
	step   time.Duration
	logger *zap.Logger
}

// New creates a Client for baseURL. A nil httpClient uses a traced default.
//
// Precondition: baseURL must be an absolute http(s) URL; logger non-nil.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   httpClient,
		step:   RetryStep,
		logger: logger,
	}
}

// WithRetryStep replaces the retry delay increment. Used by tests.
func (c *Client) WithRetryStep(d time.Duration) *Client {
	c.step = d
	return c
}

// do sends method path with body encoded as JSON and decodes a 2xx
// response into out. Transport failures and 5xx are retried up to
// MaxAttempts; 4xx is returned at once.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		raw, err := c.once(ctx, method, path, payload)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding %s %s: %w", method, path, err))
			}
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("request failed, retrying",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	b := backoff.WithContext(&linearBackOff{step: c.step, limit: MaxAttempts - 1}, ctx)
	return backoff.RetryNotify(op, b, notify)
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", ErrTransport, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: gjson.GetBytes(raw, "error").String()}
	}
	return raw, nil
}

// GenerateStory requests the next story segment.
func (c *Client) GenerateStory(ctx context.Context, req narrative.Request) (narrative.Response, error) {
	var out narrative.Response
	err := c.do(ctx, http.MethodPost, "/api/story/generate", req, &out)
	return out, err
}

// ResolveCombat requests one resolved combat round.
func (c *Client) ResolveCombat(ctx context.Context, req combat.Request) (combat.Result, error) {
	var out combat.Result
	err := c.do(ctx, http.MethodPost, "/api/story/combat", req, &out)
	return out, err
}

// Save upserts s and returns the stored save id.
func (c *Client) Save(ctx context.Context, s save.Session) (string, error) {
	var out struct {
		SaveID string `json:"saveId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/save", s, &out); err != nil {
		return "", err
	}
	return out.SaveID, nil
}

// Load fetches an active save.
func (c *Client) Load(ctx context.Context, saveID string) (*save.Session, error) {
	var out save.Session
	if err := c.do(ctx, http.MethodGet, "/api/save/"+url.PathEscape(saveID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSaves returns the player's most recent saves.
func (c *Client) ListSaves(ctx context.Context, playerID string) ([]save.Summary, error) {
	var out []save.Summary
	err := c.do(ctx, http.MethodGet, "/api/save/player/"+url.PathEscape(playerID), nil, &out)
	return out, err
}

// DeleteSave soft-deletes a save.
func (c *Client) DeleteSave(ctx context.Context, saveID string) error {
	return c.do(ctx, http.MethodDelete, "/api/save/"+url.PathEscape(saveID), nil, nil)
}

// Profile fetches the player's profile.
func (c *Client) Profile(ctx context.Context, playerID string) (*save.Profile, error) {
	var out save.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile/"+url.PathEscape(playerID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile renames the player's profile and records achievements.
func (c *Client) UpdateProfile(ctx context.Context, playerID string, u save.ProfileUpdate) (*save.Profile, error) {
	var out save.Profile
	if err := c.do(ctx, http.MethodPatch, "/api/profile/"+url.PathEscape(playerID), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports whether the server and its store are up. It is not retried.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.once(ctx, http.MethodGet, "/healthz", nil)
	return err
}
