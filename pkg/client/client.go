// Package client is the HTTP client of the library REST API.
//
// Every request carries a fresh X-Request-ID and, when a session exists, the
// bearer token. Requests are never retried.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// DefaultTimeout bounds every request when no timeout is configured
const DefaultTimeout = 10 * time.Second

const requestIDHeader = "X-Request-ID"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Credentials supplies the bearer token and is told when the server rejects it
type Credentials interface {
	// Token returns the current token, false when logged out
	Token() (string, bool)

	// Expire drops the session after an authentication failure
	Expire(ctx context.Context) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	newID      func() string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept as is.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestIDs replaces the X-Request-ID generator
func WithRequestIDs(newID func() string) Option {
	return func(c *Client) {
		c.newID = newID
	}
}

// New returns a client for the API at baseURL. A nil creds means every call is anonymous.
func New(baseURL string, timeout time.Duration, creds Credentials, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		creds:      creds,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// access says whether a call needs a session
type access int

const (
	public access = iota
	authenticated
)

// envelope is the server's response wrapper
type envelope struct {
	Success *bool               `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Message string              `json:"message"`
	Error   string              `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, acc access, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, acc, nil, out)
}

func (c *Client) post(ctx context.Context, path string, acc access, in, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, acc, in, out)
}

func (c *Client) put(ctx context.Context, path string, acc access, in, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, path, acc, in, out)
}

func (c *Client) delete(ctx context.Context, path string, acc access) error {
	return c.doJSON(ctx, http.MethodDelete, path, acc, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, acc access, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, acc, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(method, path, err)
	}

	if out == nil {
		return nil
	}
	return decodeData(raw, out)
}

// send performs one request and turns non-2xx answers into *APIError.
// The caller closes the body of a successful response.
func (c *Client) send(ctx context.Context, method, path string, acc access, body io.Reader, contentType string) (*http.Response, error) {
	token, hasToken := c.token()
	if acc == authenticated && !hasToken {
		return nil, ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, c.newID())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, c.failure(ctx, method, path, resp)
	}
	return resp, nil
}

func (c *Client) token() (string, bool) {
	if c.creds == nil {
		return "", false
	}
	token, ok := c.creds.Token()
	return token, ok && token != ""
}

func (c *Client) failure(ctx context.Context, method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var env envelope
	message := ""
	if err := json.Unmarshal(raw, &env); err == nil {
		message = env.Message
		if message == "" {
			message = env.Error
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	apiErr := &APIError{
		Kind:    classify(resp.StatusCode, path, message),
		Status:  resp.StatusCode,
		Method:  method,
		Path:    path,
		Message: message,
	}

	if apiErr.Kind == KindAuthentication && c.creds != nil {
		if err := c.creds.Expire(ctx); err != nil {
			apiErr.Err = fmt.Errorf("clear session: %w", err)
		}
	}
	return apiErr
}

func (c *Client) transportError(method, path string, err error) error {
	message := "Network error. Check your connection and try again."

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		message = "The request timed out. Please try again."
	}

	return &APIError{
		Kind:    KindNetwork,
		Method:  method,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// decodeData unwraps the response envelope when there is one and decodes the payload into out
func decodeData(raw []byte, out interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		raw = env.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
