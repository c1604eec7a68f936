// Package environment prepares the content tree the scenarios run against.
package environment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/torosent/glt/internal/content"
)

// Service is the subset of the content client needed to reset a container.
type Service interface {
	Create(ctx context.Context, url string, payload content.CreatePayload) (content.Node, error)
	Delete(ctx context.Context, url string) error
}

// Environment resets the root container under a database URL.
type Environment struct {
	svc       Service
	target    string
	container string
	logger    *zap.Logger
}

// Option configures an Environment.
type Option func(*Environment)

// WithLogger sets the logger used for reset steps.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Environment) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an Environment managing the container with id container
// under the database at target.
func New(svc Service, target, container string, opts ...Option) *Environment {
	e := &Environment{
		svc:       svc,
		target:    target,
		container: container,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root is the URL of the managed container.
func (e *Environment) Root() string {
	return content.ChildURL(e.target, e.container)
}

// Reset deletes the container with everything below it and creates it
// again, empty. Unexpected statuses from the delete are logged and ignored;
// the create must succeed.
func (e *Environment) Reset(ctx context.Context) error {
	root := e.Root()
	logger := e.logger.With(zap.String("url", root))

	if err := e.svc.Delete(ctx, root); err != nil {
		var statusErr *content.StatusError
		if !errors.As(err, &statusErr) {
			return fmt.Errorf("delete container: %w", err)
		}
		logger.Warn("ignoring failed container delete", zap.Int("status", statusErr.StatusCode))
	}

	if _, err := e.svc.Create(ctx, e.target, content.NewContainer(e.container)); err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	logger.Info("container reset")
	return nil
}
