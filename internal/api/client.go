// Package api provides a client for the external job API.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/watchfire-io/jobwatch/internal/logging"
)

const (
	// DefaultBaseURL is the base URL of a local server.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout is the default HTTP timeout for request/response calls.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// CSRFHeader carries the CSRF token on every request.
	CSRFHeader = "X-CSRFToken"

	// RequestIDHeader carries a per-request identifier for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	// SessionCookieName is the server's session cookie.
	SessionCookieName = "session"

	externosPath = "/api/v2/externos"
	streamPath   = "/api/v2/logs-tempo-real/stream"
)

// Client is a job API client. It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client // no timeout; bounded by context only
	logger       logrus.FieldLogger
	limiter      *rate.Limiter
	session      string

	mu        sync.RWMutex
	csrfToken string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client for request/response calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout for request/response calls.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithCSRFToken sets the initial CSRF token. An empty token is sent as an empty header.
func WithCSRFToken(token string) ClientOption {
	return func(c *Client) {
		c.csrfToken = token
	}
}

// WithSessionCookie seeds the cookie jar with the server session cookie.
func WithSessionCookie(value string) ClientOption {
	return func(c *Client) {
		c.session = value
	}
}

// NewClient creates a new job API client.
func NewClient(opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}
	c.streamClient = &http.Client{
		Transport: c.httpClient.Transport,
		Jar:       c.httpClient.Jar,
	}
	if c.session != "" {
		if u, err := url.Parse(c.baseURL); err == nil {
			c.httpClient.Jar.SetCookies(u, []*http.Cookie{{Name: SessionCookieName, Value: c.session, Path: "/"}})
		}
	}

	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetCSRFToken replaces the CSRF token used by subsequent requests.
func (c *Client) SetCSRFToken(token string) {
	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()
}

// CSRFToken returns the current CSRF token.
func (c *Client) CSRFToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrfToken
}

// APIError represents a non-2xx response from the job API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("job API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// ProtocolError is a 2xx response whose body reports success=false.
type ProtocolError struct {
	Endpoint string
	Code     string
	Message  string
}

func (e *ProtocolError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if msg == "" {
		msg = "request failed"
	}
	return msg
}

// IsNotFound reports whether err is a 404 or a JOB_NOT_FOUND protocol error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return true
	}
	var protoErr *ProtocolError
	return errors.As(err, &protoErr) && protoErr.Code == "JOB_NOT_FOUND"
}

// enveloped is implemented by every response body.
type enveloped interface {
	envelope() *Envelope
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, body any) (*http.Request, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL = reqURL + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(CSRFHeader, c.CSRFToken())
	req.Header.Set(RequestIDHeader, uuid.NewString())
	return req, nil
}

// do performs a request and decodes the JSON body into result.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, params url.Values, body any, result enveloped) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, params, body)
	if err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": req.Header.Get(RequestIDHeader),
	}).Debug("job API request")

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if env := result.envelope(); !env.Success {
		return &ProtocolError{Endpoint: path, Code: env.Error, Message: env.Message}
	}
	return nil
}

// errorMessage extracts a server message from an error body, falling back to the raw text.
func errorMessage(data []byte) string {
	var env Envelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
