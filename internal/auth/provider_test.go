package auth

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestBasicProvider(t *testing.T) {
	provider := NewBasicProvider("root", "secret")

	gotToken, err := provider.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if gotToken != "cm9vdDpzZWNyZXQ=" {
		t.Errorf("Token() = %q, want %q", gotToken, "cm9vdDpzZWNyZXQ=")
	}

	req := httptest.NewRequest("GET", "http://example.com/db/container", nil)
	if err := provider.InjectHeader(context.Background(), req); err != nil {
		t.Fatalf("InjectHeader() error = %v", err)
	}
	user, pass, ok := req.BasicAuth()
	if !ok {
		t.Fatalf("expected basic auth on request")
	}
	if user != "root" || pass != "secret" {
		t.Errorf("BasicAuth() = %q/%q, want root/secret", user, pass)
	}

	if err := provider.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantHeader string
	}{
		{name: "basic when token empty", wantHeader: "Basic cm9vdDpyb290"},
		{name: "bearer when token set", token: "jwt-abc", wantHeader: "Bearer jwt-abc"},
		{name: "scheme in token", token: "JWT jwt-abc", wantHeader: "JWT jwt-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := New("root", "root", tt.token)
			req := httptest.NewRequest("GET", "http://example.com", nil)
			if err := provider.InjectHeader(context.Background(), req); err != nil {
				t.Fatalf("InjectHeader() error = %v", err)
			}
			if got := req.Header.Get("Authorization"); got != tt.wantHeader {
				t.Errorf("Authorization = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}
