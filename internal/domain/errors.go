package domain

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinels matched by errors.Is against an OpError of the same kind.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid config")
	ErrForbidden     = errors.New("forbidden")
)

// ErrorKind decides how an error surfaces: exit status in the CLI, HTTP
// status on the request path.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindForbidden     ErrorKind = "forbidden"
	KindExecution     ErrorKind = "execution"
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:      ErrNotFound,
	KindInvalidConfig: ErrInvalidConfig,
	KindForbidden:     ErrForbidden,
}

// OpError wraps an underlying error with the failing operation ("site.open",
// "config.load") and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // file or address involved, if any
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// IsKind reports whether err carries an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// KindOf classifies err: the kind of the outermost OpError, else not_found or
// forbidden for the matching fs errors, else execution.
func KindOf(err error) ErrorKind {
	var oe *OpError
	switch {
	case errors.As(err, &oe):
		return oe.Kind
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindForbidden
	default:
		return KindExecution
	}
}
