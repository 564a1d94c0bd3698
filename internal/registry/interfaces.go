//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

package registry

import "context"

// Subsystem is a long-lived capability owned by the Registry.
type Subsystem interface {
	// Close deactivates the subsystem and releases its resources.
	Close(ctx context.Context) error
}

// Suspender is implemented by subsystems that can pause while the app is
// in the background. Subsystems without it are left alone by SuspendAll
// and ResumeAll.
type Suspender interface {
	Suspend(ctx context.Context) error
	Resume(ctx context.Context) error
}

// SuspendableSubsystem is a Subsystem that also supports suspension.
type SuspendableSubsystem interface {
	Subsystem
	Suspender
}

// StateObserver is notified of every entry state transition.
type StateObserver interface {
	StateChanged(v Variant, from, to State)
}
