package auth

import (
	"context"
	"net/http"
	"strings"
)

const defaultScheme = "Bearer"

// TokenProvider sends a pre-issued token, typically a JWT obtained from the
// content service's login endpoint outside of glt.
type TokenProvider struct {
	scheme string
	token  string
}

// NewTokenProvider parses token as either a bare credential, sent with the
// Bearer scheme, or a "Scheme credential" pair such as "JWT eyJ...".
func NewTokenProvider(token string) *TokenProvider {
	token = strings.TrimSpace(token)
	if scheme, value, ok := strings.Cut(token, " "); ok && value != "" {
		return &TokenProvider{scheme: scheme, token: strings.TrimSpace(value)}
	}
	return &TokenProvider{scheme: defaultScheme, token: token}
}

// Scheme returns the Authorization scheme.
func (p *TokenProvider) Scheme() string {
	return p.scheme
}

func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	return p.token, nil
}

func (p *TokenProvider) InjectHeader(ctx context.Context, req *http.Request) error {
	req.Header.Set("Authorization", p.scheme+" "+p.token)
	return nil
}

func (p *TokenProvider) Close() error {
	return nil
}
