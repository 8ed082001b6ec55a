package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	portalAuth "github.com/MrEthical07/portalAuth"
)

const (
	apiPrefix = "/api/v1/"
	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20

	// TokenNotProvided is the backend message for anonymous calls to bearer
	// endpoints. It is not forwarded to the Notifier when the request carried no
	// bearer token.
	TokenNotProvided = "Token not provided"
)

// Config holds transport settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig targets a local backend with a 15s timeout.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8000",
		Timeout:   15 * time.Second,
		UserAgent: "portalAuth/1",
	}
}

// Notifier shows user-facing error messages (a toast in the UI host).
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(message string)

// Notify calls f(message).
func (f NotifierFunc) Notify(message string) { f(message) }

// Option customizes a [Client].
type Option func(*Client)

// WithHTTPClient replaces the transport. A client without a Jar gets the
// default cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNotifier sets where user-facing error messages go.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTokenSource sets the bearer token source at construction.
func WithTokenSource(ts portalAuth.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// Client is the REST implementation of portalAuth.AuthAPI.
type Client struct {
	base      *url.URL
	userAgent string
	http      *http.Client
	notifier  Notifier
	logger    zerolog.Logger

	mu     sync.RWMutex
	tokens portalAuth.TokenSource
}

var _ portalAuth.AuthAPI = (*Client)(nil)

// New validates cfg and builds a client with its own cookie jar.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("httpapi: BaseURL required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpapi: parse BaseURL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("httpapi: unsupported scheme %q", base.Scheme)
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("httpapi: Timeout must be >= 0")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:      base,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout, Jar: jar},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	c.logger = c.logger.With().Str("component", "httpapi").Logger()
	return c, nil
}

// SetTokenSource sets where the bearer token comes from. The store is usually
// built after the client, so this breaks the construction cycle.
func (c *Client) SetTokenSource(ts portalAuth.TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

// Login posts credentials to auth/login.
func (c *Client) Login(ctx context.Context, creds portalAuth.Credentials) portalAuth.Result[portalAuth.TokenPayload] {
	var out portalAuth.TokenPayload
	if err := c.do(ctx, http.MethodPost, "auth/login", creds, &out, portalAuth.ErrInvalidCredentials); err != nil {
		return portalAuth.Fail[portalAuth.TokenPayload](err)
	}
	return portalAuth.Ok(out)
}

// Register creates a studio account via auth/register.
func (c *Client) Register(ctx context.Context, details portalAuth.Registration) portalAuth.Result[portalAuth.TokenPayload] {
	var out portalAuth.TokenPayload
	if err := c.do(ctx, http.MethodPost, "auth/register", details, &out, portalAuth.ErrAccountExists); err != nil {
		return portalAuth.Fail[portalAuth.TokenPayload](err)
	}
	return portalAuth.Ok(out)
}

// RegisterAdmin creates a super-admin account. It is not part of AuthAPI; the
// store never calls it.
func (c *Client) RegisterAdmin(ctx context.Context, details portalAuth.Registration) portalAuth.Result[portalAuth.TokenPayload] {
	var out portalAuth.TokenPayload
	if err := c.do(ctx, http.MethodPost, "auth/super-admin/register", details, &out, portalAuth.ErrAccountExists); err != nil {
		return portalAuth.Fail[portalAuth.TokenPayload](err)
	}
	return portalAuth.Ok(out)
}

// RefreshToken exchanges the refresh cookie for a new access token.
func (c *Client) RefreshToken(ctx context.Context) portalAuth.Result[portalAuth.TokenPayload] {
	var out portalAuth.TokenPayload
	if err := c.do(ctx, http.MethodPost, "auth/refresh", nil, &out, portalAuth.ErrUnauthorized); err != nil {
		return portalAuth.Fail[portalAuth.TokenPayload](err)
	}
	return portalAuth.Ok(out)
}

// Logout ends the backend session and drops the refresh cookie.
func (c *Client) Logout(ctx context.Context) portalAuth.Result[struct{}] {
	if err := c.do(ctx, http.MethodPost, "auth/logout", nil, nil, nil); err != nil {
		return portalAuth.Fail[struct{}](err)
	}
	return portalAuth.Ok(struct{}{})
}

// GetAboutMe reads the profile for the current bearer token.
func (c *Client) GetAboutMe(ctx context.Context) portalAuth.Result[portalAuth.User] {
	var out portalAuth.User
	if err := c.do(ctx, http.MethodGet, "auth/me", nil, &out, nil); err != nil {
		return portalAuth.Fail[portalAuth.User](err)
	}
	return portalAuth.Ok(out)
}

// Health calls GET {BaseURL}/health and expects {"status":"ok"}.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	u := c.base.JoinPath("health")
	if err := c.roundTrip(ctx, http.MethodGet, u.String(), "", nil, &out, nil); err != nil {
		return err
	}
	if out.Status != "ok" {
		return &APIError{Status: http.StatusOK, Message: fmt.Sprintf("backend status %q", out.Status), Kind: portalAuth.ErrServer}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, badRequest error) error {
	u := c.base.JoinPath(apiPrefix, path)
	token := c.bearer()
	err := c.roundTrip(ctx, method, u.String(), token, body, out, badRequest)
	if err != nil {
		c.notify(err, token != "")
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, target, token string, body, out any, badRequest error) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: err.Error(), Kind: portalAuth.ErrDecode}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &APIError{Message: err.Error(), Kind: portalAuth.ErrNetwork}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", target).Msg("request failed")
		return &APIError{Message: err.Error(), Kind: portalAuth.ErrNetwork}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: err.Error(), Kind: portalAuth.ErrNetwork}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, data),
			Kind:    kindForStatus(resp.StatusCode, badRequest),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return &APIError{Status: resp.StatusCode, Message: "empty response body", Kind: portalAuth.ErrDecode}
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "decode response: " + err.Error(), Kind: portalAuth.ErrDecode}
	}
	return nil
}

// errorMessage prefers the body's "message", then a string "detail", then the
// status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		var detail string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && detail != "" {
			return detail
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// notify forwards the failure text to the Notifier. An anonymous request that
// fails with [TokenNotProvided] is expected and stays quiet.
func (c *Client) notify(err error, authenticated bool) {
	if c.notifier == nil {
		return
	}
	var apiErr *APIError
	msg := err.Error()
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	if !authenticated && msg == TokenNotProvided {
		return
	}
	c.notifier.Notify(msg)
}
