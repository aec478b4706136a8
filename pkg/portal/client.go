package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a fresh id on every request so portal logs can be
// matched with ours.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody caps how much of a failed response is kept for the message.
const maxErrorBody = 64 << 10

// APIError is returned for every failed call. Message is always non-empty.
type APIError struct {
	Status  int    // HTTP status, 0 when the request never got a response.
	Message string // Human-readable reason.
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "portal: " + e.Message
	}
	return fmt.Sprintf("portal: %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Auth holds authentication settings for the portal API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// Client talks to one portal backend.
type Client struct {
	BaseURL string            // API base URL (no trailing slash).
	Auth    Auth              // Authentication settings.
	HTTP    *http.Client      // HTTP client; falls back to a client with Timeout.
	Timeout time.Duration     // Timeout of the fallback client (default 30s).
	Headers map[string]string // Extra headers applied to every request.
	Logger  *zap.Logger       // Request logger; nil disables logging.

	clientOnce    sync.Once
	defaultClient *http.Client
}

// New creates a Client. A nil client falls back to a default one at call time.
func New(baseURL string, auth Auth, client *http.Client) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Auth:    auth,
		HTTP:    client,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}

	c.clientOnce.Do(func() {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.defaultClient = &http.Client{Timeout: timeout}
	})

	return c.defaultClient
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// NewRequest builds an *http.Request with the base URL, auth, custom headers
// and a request id already applied.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	if c.Auth.Key != "" {
		header := c.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := c.Auth.Key
		if header == "Authorization" {
			scheme := c.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if c.Auth.Scheme != "" {
			value = c.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	return req, nil
}

// Do sends the request and turns transport failures and non-2xx responses
// into *APIError. On success the caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	log := c.logger().With(
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
	)

	start := time.Now()
	resp, err := c.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
	if err != nil {
		log.Debug("portal request failed", zap.Error(err))
		return nil, &APIError{Message: err.Error()}
	}

	log.Debug("portal request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	return resp, nil
}

// envelope is the wrapper every REST endpoint answers with.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// call sends payload as JSON and unwraps the response envelope into dest. A
// nil payload sends no body; a nil dest discards the data.
func (c *Client) call(ctx context.Context, method, path string, payload any, dest any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("portal: marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("portal: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, dest)
}

func (c *Client) send(req *http.Request, dest any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: "read response: " + err.Error()}
	}
	// Calls without a destination accept an empty or non-envelope body.
	if dest == nil && len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if dest == nil {
			return nil
		}
		return &APIError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	if env.Status >= 400 {
		msg := env.Message
		if msg == "" {
			msg = errorMessage(env.Status, nil)
		}
		return &APIError{Status: env.Status, Message: msg}
	}
	if dest == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response data: " + err.Error()}
	}

	return nil
}

// errorMessage extracts a readable reason from an error body. The backend
// answers with {"message"}, {"detail"} or {"error"} depending on the route,
// and proxies in front of it answer with plain text.
func errorMessage(status int, body []byte) string {
	var fields struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Detail  json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &fields) == nil {
		switch {
		case fields.Message != "":
			return fields.Message
		case fields.Error != "":
			return fields.Error
		case len(fields.Detail) > 0:
			var s string
			if json.Unmarshal(fields.Detail, &s) == nil {
				return s
			}
			return string(fields.Detail)
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		return text
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return "unexpected status"
}
