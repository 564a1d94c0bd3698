package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistrationClosed is returned by Register after InitializeAll.
	ErrRegistrationClosed = errors.New("registration closed after initialization")
	// ErrDuplicate is returned when a variant is registered twice.
	ErrDuplicate = errors.New("variant already registered")
	// ErrAlreadyInitialized is returned by a second InitializeAll.
	ErrAlreadyInitialized = errors.New("registry already initialized")
	// ErrTornDown is returned by lifecycle calls after TeardownAll.
	ErrTornDown = errors.New("registry torn down")
	// ErrNotInitialized is returned by SuspendAll/ResumeAll before InitializeAll.
	ErrNotInitialized = errors.New("registry not initialized")
)

// ConstructionError records why a variant's factory failed. The variant is
// unavailable for the rest of the session.
type ConstructionError struct {
	Variant Variant
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct %s: %v", e.Variant, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// TransitionError reports an illegal state change.
type TransitionError struct {
	Variant  Variant
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: illegal transition %s -> %s", e.Variant, e.From, e.To)
}
