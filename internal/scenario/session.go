package scenario

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/torosent/glt/internal/content"
	"github.com/torosent/glt/internal/metrics"
)

var (
	// ErrRetryLimit is returned when an update keeps conflicting past the
	// configured limit.
	ErrRetryLimit = errors.New("conflict retry limit exceeded")
	// ErrNoChildren is returned by the fixed-target kinds when the root is empty.
	ErrNoChildren = errors.New("root has no children")
)

// Service is the subset of the content client a Session drives.
type Service interface {
	Create(ctx context.Context, url string, payload content.CreatePayload) (content.Node, error)
	Read(ctx context.Context, url string) (content.Node, error)
	Update(ctx context.Context, url string, payload content.UpdatePayload) error
}

// Params are the immutable inputs of one worker.
type Params struct {
	Root         string
	Number       int
	MaxPerFolder int
	// MaxConflictRetries caps consecutive 409s on one update. Zero retries forever.
	MaxConflictRetries int
}

// Session holds the state of one worker: its counters, the latched dive-out
// flag and the collaborators it calls. A Session is not safe for concurrent use.
type Session struct {
	svc      Service
	params   Params
	counters Counters
	diving   bool

	rng      *rand.Rand
	limiter  *rate.Limiter
	recorder *metrics.Recorder
	logger   *zap.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRand sets the source used to shuffle children.
func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLimiter paces every call the session makes.
func WithLimiter(l *rate.Limiter) SessionOption {
	return func(s *Session) {
		s.limiter = l
	}
}

// WithRecorder records the latency of every call.
func WithRecorder(r *metrics.Recorder) SessionOption {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession returns a Session for the given parameters. MaxPerFolder
// defaults to 10.
func NewSession(svc Service, params Params, opts ...SessionOption) *Session {
	if params.MaxPerFolder <= 0 {
		params.MaxPerFolder = 10
	}
	s := &Session{
		svc:    svc,
		params: params,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Counters returns the counters gathered so far.
func (s *Session) Counters() Counters {
	return s.counters
}

// DivingOut reports whether the dive-out flag has been latched.
func (s *Session) DivingOut() bool {
	return s.diving
}

// Run executes the traversal of kind until it terminates.
func (s *Session) Run(ctx context.Context, kind Kind) error {
	walk, ok := traversals[kind]
	if !ok {
		return fmt.Errorf("unknown scenario kind %d", int(kind))
	}
	return walk(s, ctx)
}

// exceeded latches the dive-out flag once loaded passes number.
func (s *Session) exceeded() bool {
	if s.counters.Loaded > s.params.Number {
		s.diving = true
	}
	return s.diving
}

// remaining reports whether a flat loop should issue another call.
func (s *Session) remaining() bool {
	return !s.diving && s.counters.Loaded < s.params.Number
}

func (s *Session) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

func (s *Session) create(ctx context.Context, url string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	_, err := s.svc.Create(ctx, url, content.NewFolder())
	s.recorder.Record(metrics.OpCreate, time.Since(start), outcome(err))
	if err != nil {
		return err
	}
	s.counters.Created++
	s.counters.Loaded++
	return nil
}

// read returns ok=false without an error when the body could not be
// decoded or the call failed in transport. The dive-out flag is latched
// in that case and the whole worker stops traversing.
func (s *Session) read(ctx context.Context, url string) (content.Node, bool, error) {
	if err := s.wait(ctx); err != nil {
		return content.Node{}, false, err
	}
	start := time.Now()
	node, err := s.svc.Read(ctx, url)
	s.recorder.Record(metrics.OpRead, time.Since(start), outcome(err))
	if err == nil {
		s.counters.Loaded++
		return node, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return content.Node{}, false, ctxErr
	}
	var decodeErr *content.DecodeError
	var transportErr *content.TransportError
	if errors.As(err, &decodeErr) || errors.As(err, &transportErr) {
		s.logger.Warn("error getting response, diving out", zap.String("url", url), zap.Error(err))
		s.diving = true
		return content.Node{}, false, nil
	}
	return content.Node{}, false, err
}

// update retries immediately on conflict.
func (s *Session) update(ctx context.Context, url string) error {
	conflicts := 0
	for {
		if err := s.wait(ctx); err != nil {
			return err
		}
		start := time.Now()
		err := s.svc.Update(ctx, url, content.TitleUpdate())
		s.recorder.Record(metrics.OpUpdate, time.Since(start), outcome(err))
		if err == nil {
			s.counters.Updated++
			s.counters.Loaded++
			return nil
		}
		if !errors.Is(err, content.ErrConflict) {
			return err
		}
		conflicts++
		if s.params.MaxConflictRetries > 0 && conflicts > s.params.MaxConflictRetries {
			return fmt.Errorf("%w: %s conflicted %d times", ErrRetryLimit, url, conflicts)
		}
		s.counters.Retries++
		s.logger.Debug("update conflict, retrying", zap.String("url", url), zap.Int("attempt", conflicts))
	}
}

func outcome(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *content.StatusError
	var decodeErr *content.DecodeError
	var transportErr *content.TransportError
	switch {
	case errors.As(err, &statusErr):
		return strconv.Itoa(statusErr.StatusCode)
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "error"
	}
}
