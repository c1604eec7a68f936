package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// AuthProvider injects credentials into HTTP requests.
type AuthProvider interface {
	InjectHeader(ctx context.Context, req *http.Request) error
}

// HeaderInjector adds request-scoped headers, such as trace context.
type HeaderInjector func(ctx context.Context, headers http.Header)

type RequestBuilder struct {
	headers      http.Header
	authProvider AuthProvider
	injectors    []HeaderInjector
}

func NewRequestBuilder(provider AuthProvider) *RequestBuilder {
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	return &RequestBuilder{
		headers:      headers,
		authProvider: provider,
	}
}

// WithHeader sets a static header sent with every request.
func (b *RequestBuilder) WithHeader(key, value string) (*RequestBuilder, error) {
	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
		return nil, fmt.Errorf("invalid header key %q", key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return nil, fmt.Errorf("invalid header value for %s", http.CanonicalHeaderKey(trimmedKey))
	}
	b.headers.Set(trimmedKey, value)
	return b, nil
}

// WithInjector registers a hook run against the headers of every built request.
func (b *RequestBuilder) WithInjector(injector HeaderInjector) *RequestBuilder {
	if injector != nil {
		b.injectors = append(b.injectors, injector)
	}
	return b
}

// Build creates a request for method and target. A non-nil payload is JSON
// encoded into a replayable body.
func (b *RequestBuilder) Build(ctx context.Context, method, target string, payload interface{}) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("target URL is required")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = encoded
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}

	req.Header = make(http.Header, len(b.headers)+1)
	for key, values := range b.headers {
		for _, val := range values {
			req.Header.Add(key, val)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = int64(len(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	for _, inject := range b.injectors {
		inject(ctx, req.Header)
	}

	if b.authProvider != nil {
		if err := b.authProvider.InjectHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("auth provider inject header: %w", err)
		}
	}

	return req, nil
}

// NewClient returns a client with its own connection pool. Every worker
// owns one so that workers never share transport state.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
