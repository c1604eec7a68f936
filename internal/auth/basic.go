package auth

import (
	"context"
	"encoding/base64"
	"net/http"
)

// BasicProvider authenticates with HTTP basic credentials, which is what
// the content service's root user expects.
type BasicProvider struct {
	username string
	password string
	encoded  string
}

// NewBasicProvider creates a provider for the given username and password.
func NewBasicProvider(username, password string) *BasicProvider {
	return &BasicProvider{
		username: username,
		password: password,
		encoded:  base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
	}
}

// Token returns the base64 encoded "username:password" pair.
func (p *BasicProvider) Token(ctx context.Context) (string, error) {
	return p.encoded, nil
}

// InjectHeader sets basic auth on the request.
func (p *BasicProvider) InjectHeader(ctx context.Context, req *http.Request) error {
	req.SetBasicAuth(p.username, p.password)
	return nil
}

// Close is a no-op for basic providers.
func (p *BasicProvider) Close() error {
	return nil
}
