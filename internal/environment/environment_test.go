package environment_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/torosent/glt/internal/auth"
	"github.com/torosent/glt/internal/content"
	"github.com/torosent/glt/internal/content/contenttest"
	"github.com/torosent/glt/internal/environment"
	"github.com/torosent/glt/internal/httpclient"
)

func newEnvironment(t *testing.T, srv *contenttest.Server) *environment.Environment {
	t.Helper()
	builder := httpclient.NewRequestBuilder(auth.NewBasicProvider("root", "root"))
	client := content.NewClient(httpclient.NewClient(5*time.Second), builder)
	return environment.New(client, srv.DatabaseURL(), "container", environment.WithLogger(zaptest.NewLogger(t)))
}

func TestResetRecreatesEmptyContainer(t *testing.T) {
	srv := contenttest.NewServer(t)
	root := srv.AddContainer("container")
	srv.AddFolders(root, 3)
	env := newEnvironment(t, srv)

	if err := env.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !srv.Exists(root) {
		t.Fatalf("container %s missing after reset", root)
	}
	if got := len(srv.Children(root)); got != 0 {
		t.Fatalf("expected empty container, got %d children", got)
	}
	if env.Root() != srv.URL(root) {
		t.Errorf("Root() = %q, want %q", env.Root(), srv.URL(root))
	}
}

func TestResetWithoutExistingContainer(t *testing.T) {
	srv := contenttest.NewServer(t)
	env := newEnvironment(t, srv)

	if err := env.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !srv.Exists("/db/container") {
		t.Fatal("container not created")
	}
	if srv.Count(http.MethodDelete, http.StatusNotFound) != 1 {
		t.Errorf("expected a single 404 delete, calls: %+v", srv.Calls())
	}
}

func TestResetIgnoresDeleteStatus(t *testing.T) {
	srv := contenttest.NewServer(t)
	srv.Script(http.MethodDelete, "/db/container", contenttest.Response{Status: http.StatusInternalServerError, Body: `{}`})
	env := newEnvironment(t, srv)

	if err := env.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !srv.Exists("/db/container") {
		t.Fatal("container not created")
	}
}

func TestResetFailsWhenCreateFails(t *testing.T) {
	srv := contenttest.NewServer(t)
	srv.Script(http.MethodPost, "/db", contenttest.Response{Status: http.StatusUnauthorized, Body: `{"reason":"nope"}`})
	env := newEnvironment(t, srv)

	err := env.Reset(context.Background())
	var statusErr *content.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestResetFailsOnTransportError(t *testing.T) {
	srv := contenttest.NewServer(t)
	env := newEnvironment(t, srv)
	srv.Close()

	if err := env.Reset(context.Background()); err == nil {
		t.Fatal("expected an error against a closed server")
	}
}
