package treesync

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies synchronizer failures.
type Kind int

const (
	// KindIO covers copy, remove and rename failures.
	KindIO Kind = iota + 1
	// KindNotFound means an expected source entry is missing.
	KindNotFound
	// KindPermission means a write on the destination was denied.
	KindPermission
	// KindBusy means a synchronize for the same pair is already running.
	KindBusy
)

// Sentinel errors matched by errors.Is against an *Error of the same Kind.
var (
	ErrIO         = errors.New("i/o error")
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrBusy       = errors.New("synchronize already in flight")
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindBusy:
		return "busy"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindNotFound:
		return ErrNotFound
	case KindPermission:
		return ErrPermission
	case KindBusy:
		return ErrBusy
	default:
		return nil
	}
}

// Error is a classified synchronizer failure.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// classify wraps err into an *Error, deriving the Kind from the fs error
// it carries. Errors that are already classified are returned unchanged.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	kind := KindIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermission
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not a synchronizer error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
