// Package transport sends JSON requests to the task API, attaches the
// session's bearer token and classifies failures.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"taskdesk/internal/logging"
)

const (
	// DefaultTimeout is the fixed per-request timeout.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-request id for log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Envelope is the {data, isSuccess, message} wrapper the server puts around
// every payload.
type Envelope struct {
	Data      json.RawMessage `json:"data"`
	IsSuccess bool            `json:"isSuccess"`
	Message   string          `json:"message"`
}

// Decode unmarshals the envelope's data into v.
// A missing or null payload leaves v untouched.
func (e *Envelope) Decode(v any) error {
	if e == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Client sends requests to the API. It never retries and never touches the
// session: every failure is logged and returned to the caller.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *logging.Logger
	metrics *Metrics

	base    http.RoundTripper
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithBaseTransport sets the round tripper under the bearer injection.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRateLimit bounds outbound requests to perSecond with the given burst.
// perSecond <= 0 disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records every request on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for baseURL. tokens is consulted on every request.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL: u,
		log:     logging.Nop(),
		base:    http.DefaultTransport,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = &http.Client{
		Timeout:   c.timeout,
		Transport: &bearerTransport{tokens: tokens, base: c.base},
	}
	c.log = c.log.WithComponent("transport")
	return c, nil
}

// Send issues method on path (relative to the base URL, may carry a query)
// with body encoded as JSON, and returns the decoded envelope on 2xx.
// Errors are *ServerError, *NetworkError or *RequestSetupError.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*Envelope, error) {
	start := time.Now()
	reqID := uuid.NewString()
	log := c.log.WithFields("request_id", reqID, "method", method, "path", path)

	req, err := c.newRequest(ctx, method, path, body)
	if err == nil && c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			err = &RequestSetupError{Message: werr.Error(), Err: werr}
		}
	}
	if err != nil {
		log.Warnw("Request error", "error", err.Error())
		c.metrics.observe(method, OutcomeSetupError, 0)
		return nil, err
	}
	req.Header.Set(RequestIDHeader, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		nerr := &NetworkError{Message: err.Error(), Err: err}
		log.Warnw("Network error", "error", nerr.Message)
		c.metrics.observe(method, OutcomeNetworkError, time.Since(start))
		return nil, nerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		nerr := &NetworkError{Message: "reading response: " + err.Error(), Err: err}
		log.Warnw("Network error", "error", nerr.Message)
		c.metrics.observe(method, OutcomeNetworkError, time.Since(start))
		return nil, nerr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &ServerError{Status: resp.StatusCode, Message: serverMessage(resp.StatusCode, raw)}
		log.Warnw("API error", "status", serr.Status, "message", serr.Message)
		c.metrics.observe(method, OutcomeServerError, time.Since(start))
		return nil, serr
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		serr := &ServerError{Status: resp.StatusCode, Message: "malformed response body"}
		log.Warnw("API error", "status", serr.Status, "message", serr.Message)
		c.metrics.observe(method, OutcomeServerError, time.Since(start))
		return nil, serr
	}

	log.Debugw("Request completed",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	c.metrics.observe(method, OutcomeOK, time.Since(start))
	return env, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &RequestSetupError{Message: "invalid path: " + path, Err: err}
	}
	target := c.baseURL.ResolveReference(rel)

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestSetupError{Message: "encoding body: " + err.Error(), Err: err}
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), rdr)
	if err != nil {
		return nil, &RequestSetupError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// decodeEnvelope accepts an empty body, the {data,...} envelope, or any
// other JSON value, which becomes the payload itself.
func decodeEnvelope(raw []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &Envelope{IsSuccess: true}, nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("invalid json")
	}
	if trimmed[0] != '{' {
		return &Envelope{Data: trimmed, IsSuccess: true}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["data"]; !ok {
		return &Envelope{Data: trimmed, IsSuccess: true}, nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// serverMessage prefers the body's message field, then the status text.
func serverMessage(status int, raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "status " + strconv.Itoa(status)
}
