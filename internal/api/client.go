// Package api is the thin HTTP client for the back-office REST API. It
// injects the bearer token, normalises failures into NetworkError and
// APIError, and never retries or caches.
package api

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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/tracing"
)

const maxResponseBytes = 32 << 20

// TokenSource supplies the current bearer token.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Options carries optional query parameters and a JSON body.
type Options struct {
	Params url.Values
	Body   any
}

// Doer issues a request and returns the raw response body.
type Doer interface {
	Do(ctx context.Context, method, path string, opts Options) ([]byte, error)
}

// Client talks to the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	notifier   notify.Notifier
	tracer     trace.Tracer
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. It applies to a copy of the
// http.Client, whichever order the options come in.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithNotifier sets where transport failures are announced.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithTracer wraps each request in a client span.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// New creates a client rooted at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		notifier:   notify.Discard,
		tracer:     noop.NewTracerProvider().Tracer(tracing.ServiceName),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Do performs a request. A 2xx returns the body, a non-2xx an *APIError,
// and a transport failure a *NetworkError after announcing it once.
func (c *Client) Do(ctx context.Context, method, path string, opts Options) ([]byte, error) {
	requestID := c.newID()
	ctx, span := c.tracer.Start(ctx, tracing.SpanPrefixHTTP+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(tracing.AttrHTTPMethod, method),
			attribute.String(tracing.AttrHTTPPath, path),
			attribute.String(tracing.AttrRequestID, requestID),
		))
	defer span.End()

	status, body, err := c.do(ctx, method, path, requestID, opts)
	if status != 0 {
		span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Message(err))
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path, requestID string, opts Options) (int, []byte, error) {
	requestURL := c.baseURL + path
	if len(opts.Params) > 0 {
		requestURL += "?" + opts.Params.Encode()
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("api: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("api: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.networkFailure(ctx, method, path, requestID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, c.networkFailure(ctx, method, path, requestID, err)
	}

	log.Debug(log.CatHTTP, "request done",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, data, nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: parseErrorMessage(data)}
	log.ErrorErr(log.CatHTTP, "request rejected", apiErr, "method", method, "path", path, "request_id", requestID)
	return resp.StatusCode, nil, apiErr
}

// networkFailure builds the NetworkError for a failed round trip and
// announces it, unless the caller itself abandoned the request.
func (c *Client) networkFailure(ctx context.Context, method, path, requestID string, err error) error {
	netErr := &NetworkError{Method: method, Path: path, Err: err}
	if errors.Is(ctx.Err(), context.Canceled) {
		netErr.Canceled = true
		log.Debug(log.CatHTTP, "request canceled", "method", method, "path", path, "request_id", requestID)
		return netErr
	}

	log.ErrorErr(log.CatHTTP, "request failed", err, "method", method, "path", path, "request_id", requestID)
	c.notifier.Notify(notify.Error(OfflineMessage, "Check your connection and try again."))
	return netErr
}

// DecodeJSON unmarshals a response body into T.
func DecodeJSON[T any](data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return out, fmt.Errorf("api: empty response body")
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("api: decoding response: %w", err)
	}
	return out, nil
}

// Fetch performs a request and decodes the JSON response into T.
func Fetch[T any](ctx context.Context, d Doer, method, path string, opts Options) (T, error) {
	data, err := d.Do(ctx, method, path, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeJSON[T](data)
}
