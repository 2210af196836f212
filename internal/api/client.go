// Package api is the client for the remote event backend. Every call is a
// single JSON request with no retry; failures come back either as a transport
// error or as a *ServerError carrying the backend's own message.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const maxResponseBytes = 4 << 20

type Client struct {
	baseURL string
	http    *http.Client
	logger  logrus.FieldLogger
}

func New(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// NewWithHTTPClient is used by tests to point the client at an httptest server.
func NewWithHTTPClient(baseURL string, hc *http.Client, logger logrus.FieldLogger) *Client {
	c := New(baseURL, 0, logger)
	c.http = hc
	return c
}

func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

type csrfKey struct{}

// WithCSRFToken attaches the token sent as X-CSRFToken on every request made
// with ctx.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, csrfKey{}, token)
}

func csrfToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

// Envelope holds the status fields every endpoint reports alongside its data.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e Envelope) failed() bool {
	return e.Error != "" || e.Status == "error"
}

func (e Envelope) reason(fallback string) string {
	if e.Error != "" {
		return e.Error
	}
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out)
}

// do sends one request and decodes the response body into out. Non-2xx
// statuses and bodies flagged as errors become *ServerError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := csrfToken(ctx); token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("api call")

	var env Envelope
	envErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fallback := http.StatusText(resp.StatusCode)
		if envErr != nil {
			return &ServerError{Status: resp.StatusCode, Message: fallback}
		}
		return &ServerError{Status: resp.StatusCode, Message: env.reason(fallback)}
	}

	if envErr != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, envErr)
	}
	if env.failed() {
		return &ServerError{Status: resp.StatusCode, Message: env.reason("Request failed")}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
