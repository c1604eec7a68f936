package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type headerProvider struct {
	value string
	err   error
}

func (p *headerProvider) InjectHeader(ctx context.Context, req *http.Request) error {
	if p.err != nil {
		return p.err
	}
	req.Header.Set("Authorization", p.value)
	return nil
}

func TestBuildRequestWithJSONPayload(t *testing.T) {
	builder := NewRequestBuilder(&headerProvider{value: "Basic cm9vdDpyb290"})

	payload := map[string]string{"@type": "Folder", "title": "Folder"}
	req, err := builder.Build(context.Background(), "post", "http://example.com/db/container", payload)
	if err != nil {
		t.Fatalf("expected request, got error: %v", err)
	}
	if req.Method != http.MethodPost {
		t.Fatalf("expected method POST, got %s", req.Method)
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON content type, got %q", req.Header.Get("Content-Type"))
	}
	if req.Header.Get("Accept") != "application/json" {
		t.Fatalf("expected JSON accept header, got %q", req.Header.Get("Accept"))
	}
	if req.Header.Get("Authorization") != "Basic cm9vdDpyb290" {
		t.Fatalf("expected auth header, got %q", req.Header.Get("Authorization"))
	}

	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	expectedBody := `{"@type":"Folder","title":"Folder"}`
	if string(bodyBytes) != expectedBody {
		t.Fatalf("expected body %q, got %q", expectedBody, string(bodyBytes))
	}
	if req.ContentLength != int64(len(expectedBody)) {
		t.Fatalf("expected content length %d, got %d", len(expectedBody), req.ContentLength)
	}
	if req.GetBody == nil {
		t.Fatalf("expected request to support body replay")
	}
	replayBody, err := req.GetBody()
	if err != nil {
		t.Fatalf("expected replay body, got error: %v", err)
	}
	replayBytes, err := io.ReadAll(replayBody)
	if err != nil {
		t.Fatalf("read replay body failed: %v", err)
	}
	if string(replayBytes) != expectedBody {
		t.Fatalf("expected replay body %q, got %q", expectedBody, string(replayBytes))
	}
}

func TestBuildRequestWithoutPayload(t *testing.T) {
	builder := NewRequestBuilder(nil)
	req, err := builder.Build(context.Background(), "", "http://example.com/db/container", nil)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	if req.Method != http.MethodGet {
		t.Fatalf("expected method GET, got %s", req.Method)
	}
	if req.Body != nil && req.Body != http.NoBody {
		t.Fatalf("expected empty body")
	}
	if req.Header.Get("Content-Type") != "" {
		t.Fatalf("expected no content type without payload")
	}
}

func TestRequestBuilder_Verbs(t *testing.T) {
	verbs := []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPatch}
	for _, verb := range verbs {
		t.Run(verb, func(t *testing.T) {
			req, err := NewRequestBuilder(nil).Build(context.Background(), verb, "http://example.com", nil)
			if err != nil {
				t.Fatalf("Build error = %v", err)
			}
			if req.Method != verb {
				t.Fatalf("expected method %s, got %s", verb, req.Method)
			}
		})
	}
}

func TestRequestBuilder_MissingTarget(t *testing.T) {
	if _, err := NewRequestBuilder(nil).Build(context.Background(), http.MethodGet, "  ", nil); err == nil {
		t.Fatalf("expected error for empty target")
	}
}

func TestRequestBuilder_InvalidHeaders(t *testing.T) {
	if _, err := NewRequestBuilder(nil).WithHeader("", "value"); err == nil {
		t.Fatalf("expected error for empty header key")
	}
	if _, err := NewRequestBuilder(nil).WithHeader("Bad\nKey", "value"); err == nil {
		t.Fatalf("expected error for header key containing newline")
	}
	if _, err := NewRequestBuilder(nil).WithHeader("X-Test", "bad\rvalue"); err == nil {
		t.Fatalf("expected error for header value containing CR/LF")
	}
}

func TestRequestBuilder_InjectorsAndStaticHeaders(t *testing.T) {
	builder, err := NewRequestBuilder(nil).WithHeader("x-run-id", "01HZY")
	if err != nil {
		t.Fatalf("WithHeader error = %v", err)
	}
	builder.WithInjector(func(ctx context.Context, h http.Header) {
		h.Set("Traceparent", "00-abc-def-01")
	})

	req, err := builder.Build(context.Background(), http.MethodGet, "http://example.com", nil)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	if req.Header.Get("X-Run-Id") != "01HZY" {
		t.Fatalf("expected static header, got %q", req.Header.Get("X-Run-Id"))
	}
	if req.Header.Get("Traceparent") != "00-abc-def-01" {
		t.Fatalf("expected injected header, got %q", req.Header.Get("Traceparent"))
	}
}

func TestRequestBuilder_AuthProviderError(t *testing.T) {
	builder := NewRequestBuilder(&headerProvider{err: errors.New("no credentials")})
	if _, err := builder.Build(context.Background(), http.MethodGet, "http://example.com", nil); err == nil {
		t.Fatalf("expected auth provider error to propagate")
	}
}

func TestClientTimeoutApplied(t *testing.T) {
	timeout := 50 * time.Millisecond
	client := NewClient(timeout)
	defer client.CloseIdleConnections()

	if client.Timeout != timeout {
		t.Fatalf("expected client timeout %s, got %s", timeout, client.Timeout)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(timeout * 3)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if resp != nil {
		resp.Body.Close()
	}
	if err == nil {
		t.Fatalf("expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed < timeout {
		t.Fatalf("request returned too quickly: %s < %s", elapsed, timeout)
	}
}

func TestNewClientClampsNegativeTimeout(t *testing.T) {
	client := NewClient(-time.Second)
	if client.Timeout != 0 {
		t.Fatalf("expected negative timeout clamped to 0, got %s", client.Timeout)
	}
}
