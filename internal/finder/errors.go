package finder

import (
	"context"
	"errors"
	"fmt"
)

// Kind categorizes finder errors.
type Kind string

const (
	// KindInvalidArgument indicates a contract violation by the caller
	// (e.g., a nil source). Reported before any I/O.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"

	// KindIO indicates a scratch-file failure in one of the passes.
	KindIO Kind = "IO"

	// KindCanceled indicates the context ended before the call finished.
	KindCanceled Kind = "CANCELED"
)

// Pass names used in Error.Pass.
const (
	PassReplay     = "replay"
	PassRecurrence = "recurrence"
	PassReconcile  = "reconcile"
)

// ErrNilSource is wrapped by the error returned for a nil source.
var ErrNilSource = errors.New("nil input source")

// Error is returned by Find for every failure.
type Error struct {
	Kind Kind
	Pass string // empty for invalid arguments
	Err  error
}

func (e *Error) Error() string {
	if e.Pass != "" {
		return fmt.Sprintf("%s: %s pass: %v", e.Kind, e.Pass, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidArgument reports whether err is a KindInvalidArgument error.
func IsInvalidArgument(err error) bool {
	return hasKind(err, KindInvalidArgument)
}

// IsIO reports whether err is a KindIO error.
func IsIO(err error) bool {
	return hasKind(err, KindIO)
}

// IsCanceled reports whether err is a KindCanceled error.
func IsCanceled(err error) bool {
	return hasKind(err, KindCanceled)
}

func hasKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// passError classifies a failure inside a pass.
func passError(pass string, err error) *Error {
	kind := KindIO
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCanceled
	}
	return &Error{Kind: kind, Pass: pass, Err: err}
}
