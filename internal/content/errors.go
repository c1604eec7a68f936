package content

import (
	"errors"
	"fmt"
)

// ErrConflict matches a StatusError carrying HTTP 409. The service uses it
// to signal that a concurrent modification invalidated an update.
var ErrConflict = errors.New("content: conflict")

// StatusError is returned when the service answers outside the status
// contract of an operation.
type StatusError struct {
	Op         string
	URL        string
	StatusCode int
	Want       int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d, want %d", e.Op, e.URL, e.StatusCode, e.Want)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports whether target is ErrConflict and the status is 409.
func (e *StatusError) Is(target error) bool {
	return target == ErrConflict && e.StatusCode == 409
}

// DecodeError is returned by Read when the body is not a decodable node.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError wraps failures that happened before a status was received.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
