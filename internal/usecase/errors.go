package usecase

import (
	"context"
	"errors"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/kicker-league/internal/platform/resilience"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrConflict              = errors.New("already exists")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// ErrorKind is the boundary-facing category of an error.
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindInvalid     ErrorKind = "invalid_input"
	KindConflict    ErrorKind = "conflict"
	KindNotFound    ErrorKind = "not_found"
	KindUnavailable ErrorKind = "dependency_unavailable"
	KindInternal    ErrorKind = "internal"
)

func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case crerr.Is(err, ErrInvalidInput):
		return KindInvalid
	case crerr.Is(err, ErrConflict):
		return KindConflict
	case crerr.Is(err, ErrNotFound):
		return KindNotFound
	case crerr.Is(err, ErrDependencyUnavailable),
		crerr.Is(err, resilience.ErrCircuitOpen),
		crerr.Is(err, context.DeadlineExceeded):
		return KindUnavailable
	default:
		return KindInternal
	}
}
