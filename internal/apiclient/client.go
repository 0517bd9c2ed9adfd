// Package apiclient is the single outbound HTTP client for the upstream
// bus-reservation REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SivaTeja36/Bus-reservation/internal/domain"
)

const DefaultTimeout = 30 * time.Second

// TokenSource yields the bearer token for an outgoing request. It is
// consulted at dispatch time, so a logout takes effect on the very next
// request. An empty token means the header is omitted.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginResponse struct {
	domain.User
	JWTToken string `json:"jwt_token"`
}

// Login exchanges credentials for a token. It never sends an
// Authorization header. Every failure is an AuthenticationError.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	var env domain.Envelope[loginResponse]
	status, err := c.do(ctx, http.MethodPost, "/auth/login", domain.LoginRequest{Email: email, Password: password}, &env, false)
	if err != nil {
		return nil, domain.AuthenticationError{Err: err}
	}
	if !ok2xx(status) {
		return nil, domain.AuthenticationError{Err: fmt.Errorf("login returned status %d", status)}
	}
	if env.Data.JWTToken == "" {
		return nil, domain.AuthenticationError{Err: fmt.Errorf("login response carried no token")}
	}
	return &domain.LoginResult{Token: env.Data.JWTToken, User: env.Data.User}, nil
}

func list[T any](ctx context.Context, c *Client, resource domain.Resource, path string) ([]T, error) {
	var env domain.Envelope[[]T]
	status, err := c.do(ctx, http.MethodGet, path, nil, &env, true)
	if err != nil {
		return nil, domain.RequestError{Resource: resource, Action: domain.ActionList, Err: err}
	}
	if !ok2xx(status) {
		return nil, domain.RequestError{Resource: resource, Action: domain.ActionList, Status: status}
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return env.Data, nil
}

func create(ctx context.Context, c *Client, resource domain.Resource, path string, payload any) (*domain.MessageData, error) {
	var env domain.Envelope[domain.MessageData]
	status, err := c.do(ctx, http.MethodPost, path, payload, &env, true)
	if err != nil {
		return nil, domain.RequestError{Resource: resource, Action: domain.ActionCreate, Err: err}
	}
	if !ok2xx(status) {
		return nil, domain.RequestError{Resource: resource, Action: domain.ActionCreate, Status: status}
	}
	return &env.Data, nil
}

// do sends one request and decodes a 2xx body into out. Non-2xx bodies are
// drained and discarded; only the status is reported.
func (c *Client) do(ctx context.Context, method, path string, payload, out any, authenticated bool) (int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return 0, fmt.Errorf("resolve token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if !ok2xx(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func ok2xx(status int) bool {
	return status >= 200 && status < 300
}
