// Package httpclient provides HTTP client utilities for glt.
//
// The httpclient package handles request construction and transport setup:
//   - Per-worker clients with their own connection pools and a fixed timeout
//   - JSON request bodies that can be replayed on redirects
//   - Credential injection through an [AuthProvider]
//   - Header injection hooks, used for W3C trace context
//
// # Request Building
//
//	builder := httpclient.NewRequestBuilder(auth.NewBasicProvider("root", "root"))
//	req, err := builder.Build(ctx, http.MethodPost, rootURL, payload)
//
// # HTTP Client
//
//	client := httpclient.NewClient(30 * time.Second)
//	defer client.CloseIdleConnections()
package httpclient
