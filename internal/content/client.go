package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/glt/internal/httpclient"
	"github.com/torosent/glt/internal/tracing"
)

const (
	maxLoggedBodyBytes = 1024
	maxNodeBytes       = 16 << 20
)

// Client performs the four resource operations against the content service.
// A Client is owned by one worker and is not shared.
type Client struct {
	http    *http.Client
	builder *httpclient.RequestBuilder
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithTracer records a client span for every operation.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// NewClient wraps an HTTP client and a request builder carrying credentials.
func NewClient(httpClient *http.Client, builder *httpclient.RequestBuilder, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:    httpClient,
		builder: builder,
		tracer:  noop.NewTracerProvider().Tracer("glt"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create posts payload under url. Anything but 201 is a StatusError.
func (c *Client) Create(ctx context.Context, url string, payload CreatePayload) (Node, error) {
	status, body, err := c.do(ctx, "create", http.MethodPost, url, payload, maxNodeBytes)
	if err != nil {
		return Node{}, err
	}
	if status != http.StatusCreated {
		return Node{}, statusError("create", url, status, http.StatusCreated, body)
	}
	// The created resource is informational only.
	node, decodeErr := decodeNode(url, body)
	if decodeErr != nil {
		return Node{ID: payload.ID, Type: payload.Type, Title: payload.Title}, nil
	}
	return node, nil
}

// Read fetches and decodes the resource at url. Transport failures and
// undecodable bodies return TransportError and DecodeError; a decoded body
// with a status other than 200 returns StatusError.
func (c *Client) Read(ctx context.Context, url string) (Node, error) {
	status, body, err := c.do(ctx, "read", http.MethodGet, url, nil, maxNodeBytes)
	if err != nil {
		return Node{}, err
	}
	node, err := decodeNode(url, body)
	if err != nil {
		return Node{}, err
	}
	if status != http.StatusOK {
		return Node{}, statusError("read", url, status, http.StatusOK, body)
	}
	return node, nil
}

// Update patches the resource at url. 409 is reported as a StatusError that
// matches ErrConflict.
func (c *Client) Update(ctx context.Context, url string, payload UpdatePayload) error {
	status, body, err := c.do(ctx, "update", http.MethodPatch, url, payload, maxLoggedBodyBytes)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return statusError("update", url, status, http.StatusNoContent, body)
	}
	return nil
}

// Delete removes the resource at url. A missing resource is not an error.
func (c *Client) Delete(ctx context.Context, url string) error {
	status, body, err := c.do(ctx, "delete", http.MethodDelete, url, nil, maxLoggedBodyBytes)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound || (status >= 200 && status < 300) {
		return nil
	}
	return statusError("delete", url, status, http.StatusOK, body)
}

// CloseIdleConnections releases the pooled connections of the client.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, op, method, url string, payload interface{}, limit int64) (status int, body []byte, err error) {
	if c.builder == nil {
		return 0, nil, errors.New("request builder is not configured")
	}
	ctx, span := tracing.StartOperationSpan(ctx, c.tracer, op, method, url)
	defer func() {
		var attrs []attribute.KeyValue
		if status != 0 {
			attrs = append(attrs, attribute.Int("http.response.status_code", status))
		}
		tracing.EndSpan(span, err, attrs...)
	}()

	req, err := c.builder.Build(ctx, method, url, payload)
	if err != nil {
		return 0, nil, &TransportError{Op: op, URL: url, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, limit))
	_, _ = io.Copy(io.Discard, resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Op: op, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return resp.StatusCode, body, nil
}

func statusError(op, url string, status, want int, body []byte) *StatusError {
	snippet := body
	if len(snippet) > maxLoggedBodyBytes {
		snippet = snippet[:maxLoggedBodyBytes]
	}
	return &StatusError{
		Op:         op,
		URL:        url,
		StatusCode: status,
		Want:       want,
		Body:       strings.TrimSpace(string(snippet)),
	}
}
