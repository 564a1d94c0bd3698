package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/klauern/pdparty/internal/logging"
)

// Factory constructs and activates one subsystem.
type Factory func(ctx context.Context) (Subsystem, error)

type phase int

const (
	phaseOpen phase = iota
	phaseInitialized
	phaseTornDown
)

type entry struct {
	variant  Variant
	factory  Factory
	instance Subsystem
	state    State
	err      error
}

// Registry owns subsystem instances and sequences their lifecycle.
// Callers of Get receive non-owning references and must tolerate absence.
//
// Lifecycle calls (InitializeAll, SuspendAll, ResumeAll, TeardownAll) are
// serialized against each other; Get and States may be called at any time.
type Registry struct {
	logger   *slog.Logger
	observer StateObserver

	lifecycle sync.Mutex

	mu      sync.RWMutex
	phase   phase
	entries map[Variant]*entry
	// order is the sequence in which variants were initialized.
	order []Variant
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithObserver registers a state transition observer.
func WithObserver(o StateObserver) Option {
	return func(r *Registry) { r.observer = o }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{entries: make(map[Variant]*entry)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.Default()
	}
	return r
}

// Register installs the factory for a variant. It must be called before
// InitializeAll.
func (r *Registry) Register(v Variant, f Factory) error {
	if f == nil {
		return fmt.Errorf("register %s: nil factory", v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.phase {
	case phaseInitialized:
		return fmt.Errorf("register %s: %w", v, ErrRegistrationClosed)
	case phaseTornDown:
		return fmt.Errorf("register %s: %w", v, ErrTornDown)
	}
	if _, ok := r.entries[v]; ok {
		return fmt.Errorf("register %s: %w", v, ErrDuplicate)
	}
	r.entries[v] = &entry{variant: v, factory: f, state: StateUninitialized}
	return nil
}

// InitResult describes the outcome of InitializeAll.
type InitResult struct {
	// Active lists the variants that reached Active, in order.
	Active []Variant
	// Failed maps each failed variant to its ConstructionError.
	Failed map[Variant]error
	// Skipped lists variants in the order that had no factory.
	Skipped []Variant
}

// OK reports whether every requested variant became active.
func (r *InitResult) OK() bool {
	return len(r.Failed) == 0 && len(r.Skipped) == 0
}

// InitializeAll constructs each registered variant in the given order.
// A failing factory marks its entry Failed; the remaining variants are
// still constructed. The returned error is non-nil only on misuse.
func (r *Registry) InitializeAll(ctx context.Context, order []Variant) (*InitResult, error) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	switch r.phase {
	case phaseInitialized:
		r.mu.Unlock()
		return nil, ErrAlreadyInitialized
	case phaseTornDown:
		r.mu.Unlock()
		return nil, ErrTornDown
	}
	r.phase = phaseInitialized
	r.mu.Unlock()

	defer logging.Timer("registry.initialize")()

	res := &InitResult{Failed: make(map[Variant]error)}
	seen := make(map[Variant]bool, len(order))

	for _, v := range order {
		if seen[v] {
			r.logger.Warn("variant listed twice in init order", logging.Subsystem(string(v)))
			continue
		}
		seen[v] = true

		r.mu.RLock()
		e, ok := r.entries[v]
		r.mu.RUnlock()
		if !ok {
			r.logger.Warn("no factory registered, skipping", logging.Subsystem(string(v)))
			res.Skipped = append(res.Skipped, v)
			continue
		}

		inst, err := construct(ctx, v, e.factory)
		if err != nil {
			r.logger.Error("subsystem construction failed",
				logging.Subsystem(string(v)),
				logging.Err(err),
			)
			r.mu.Lock()
			e.err = err
			r.mu.Unlock()
			r.transition(e, StateFailed)
			res.Failed[v] = err
			continue
		}

		r.mu.Lock()
		e.instance = inst
		r.order = append(r.order, v)
		r.mu.Unlock()
		r.transition(e, StateActive)
		res.Active = append(res.Active, v)
		r.logger.Info("subsystem active", logging.Subsystem(string(v)))
	}

	return res, nil
}

// construct runs a factory, converting errors and panics into a
// ConstructionError.
func construct(ctx context.Context, v Variant, f Factory) (inst Subsystem, err error) {
	defer func() {
		if p := recover(); p != nil {
			inst = nil
			err = &ConstructionError{Variant: v, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	inst, err = f(ctx)
	if err != nil {
		return nil, &ConstructionError{Variant: v, Err: err}
	}
	if inst == nil {
		return nil, &ConstructionError{Variant: v, Err: errors.New("factory returned no subsystem")}
	}
	return inst, nil
}

// Get returns a non-owning reference to the live instance of v. It returns
// false when the variant is Uninitialized, Failed or TornDown.
func (r *Registry) Get(v Variant) (Subsystem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[v]
	if !ok || !e.state.Live() {
		return nil, false
	}
	return e.instance, true
}

// Lookup returns the live instance of v as T.
func Lookup[T any](r *Registry, v Variant) (T, bool) {
	var zero T
	inst, ok := r.Get(v)
	if !ok {
		return zero, false
	}
	t, ok := inst.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// State returns the current state of v.
func (r *Registry) State(v Variant) State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[v]; ok {
		return e.state
	}
	if r.phase == phaseTornDown {
		return StateTornDown
	}
	return StateUninitialized
}

// Status is a snapshot of one registry entry.
type Status struct {
	Variant Variant
	State   State
	Err     error
}

// States returns a snapshot of every registered entry, sorted by variant.
func (r *Registry) States() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Status{Variant: e.variant, State: e.state, Err: e.err})
	}
	slices.SortFunc(out, func(a, b Status) int {
		switch {
		case a.Variant < b.Variant:
			return -1
		case a.Variant > b.Variant:
			return 1
		}
		return 0
	})
	return out
}

// SuspendAll moves every Active entry to Suspended, in reverse
// initialization order. Subsystems that do not implement Suspender only
// change state. A failed Suspend leaves its entry Active.
func (r *Registry) SuspendAll(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	live, err := r.liveEntries()
	if err != nil {
		return err
	}

	var errs []error
	for _, e := range slices.Backward(live) {
		if e.state != StateActive {
			continue
		}
		if s, ok := e.instance.(Suspender); ok {
			if err := s.Suspend(ctx); err != nil {
				r.logger.Warn("suspend failed", logging.Subsystem(string(e.variant)), logging.Err(err))
				errs = append(errs, fmt.Errorf("suspend %s: %w", e.variant, err))
				continue
			}
		}
		r.transition(e, StateSuspended)
	}
	return errors.Join(errs...)
}

// ResumeAll moves every Suspended entry back to Active, in initialization
// order.
func (r *Registry) ResumeAll(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	live, err := r.liveEntries()
	if err != nil {
		return err
	}

	var errs []error
	for _, e := range live {
		if e.state != StateSuspended {
			continue
		}
		if s, ok := e.instance.(Suspender); ok {
			if err := s.Resume(ctx); err != nil {
				r.logger.Warn("resume failed", logging.Subsystem(string(e.variant)), logging.Err(err))
				errs = append(errs, fmt.Errorf("resume %s: %w", e.variant, err))
				continue
			}
		}
		r.transition(e, StateActive)
	}
	return errors.Join(errs...)
}

// liveEntries returns the initialized entries in initialization order.
func (r *Registry) liveEntries() ([]*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch r.phase {
	case phaseOpen:
		return nil, ErrNotInitialized
	case phaseTornDown:
		return nil, ErrTornDown
	}

	out := make([]*entry, 0, len(r.order))
	for _, v := range r.order {
		out = append(out, r.entries[v])
	}
	return out, nil
}

// TeardownAll closes every live subsystem in exact reverse of
// initialization order and clears the registry. Close errors are joined;
// every subsystem is closed regardless. A second call is a no-op.
func (r *Registry) TeardownAll(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	if r.phase == phaseTornDown {
		r.mu.Unlock()
		return nil
	}
	order := slices.Clone(r.order)
	r.mu.Unlock()

	defer logging.Timer("registry.teardown")()

	var errs []error
	for _, v := range slices.Backward(order) {
		r.mu.RLock()
		e := r.entries[v]
		r.mu.RUnlock()
		if e == nil || !e.state.Live() {
			continue
		}
		if err := e.instance.Close(ctx); err != nil {
			r.logger.Warn("close failed", logging.Subsystem(string(v)), logging.Err(err))
			errs = append(errs, fmt.Errorf("close %s: %w", v, err))
		}
		r.transition(e, StateTornDown)
		r.logger.Debug("subsystem torn down", logging.Subsystem(string(v)))
	}

	r.mu.Lock()
	r.phase = phaseTornDown
	r.entries = make(map[Variant]*entry)
	r.order = nil
	r.mu.Unlock()

	return errors.Join(errs...)
}

// transition moves e to the given state if the move is legal.
func (r *Registry) transition(e *entry, to State) {
	r.mu.Lock()
	from := e.state
	if !CanTransition(from, to) {
		r.mu.Unlock()
		r.logger.Error("illegal state transition",
			logging.Subsystem(string(e.variant)),
			logging.Err(&TransitionError{Variant: e.variant, From: from, To: to}),
		)
		return
	}
	e.state = to
	if to == StateTornDown {
		e.instance = nil
	}
	r.mu.Unlock()

	if r.observer != nil {
		r.observer.StateChanged(e.variant, from, to)
	}
}
