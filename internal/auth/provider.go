package auth

import (
	"context"
	"net/http"
)

// Provider defines the interface for credential providers that decorate
// every request sent to the content service.
type Provider interface {
	// Token returns the credential value placed after the Authorization
	// scheme (base64 user:password for basic, the raw token for bearer).
	Token(ctx context.Context) (string, error)

	// InjectHeader sets the Authorization header on the provided request.
	InjectHeader(ctx context.Context, req *http.Request) error

	// Close releases any resources held by the provider.
	Close() error
}

// New returns a token provider when token is set and a basic provider otherwise.
func New(username, password, token string) Provider {
	if token != "" {
		return NewTokenProvider(token)
	}
	return NewBasicProvider(username, password)
}
