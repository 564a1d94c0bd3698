// Package midi holds the MIDI I/O subsystem's port configuration. Wire
// protocol handling is out of scope.
package midi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/klauern/pdparty/internal/registry"
)

// DefaultPortName is used when no ports are configured.
const DefaultPortName = "PdParty"

var ErrClosed = errors.New("midi port closed")

// Options lists the virtual ports to publish.
type Options struct {
	Inputs  []string
	Outputs []string
}

// Port is the MIDI I/O subsystem. It does not support suspension; virtual
// ports stay published while the app is in the background.
type Port struct {
	mu      sync.RWMutex
	inputs  []string
	outputs []string
	closed  bool
}

// New validates the port names and opens the ports.
func New(opts Options) (*Port, error) {
	inputs, err := normalize("input", opts.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := normalize("output", opts.Outputs)
	if err != nil {
		return nil, err
	}
	return &Port{inputs: inputs, outputs: outputs}, nil
}

func normalize(kind string, names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{DefaultPortName}, nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("empty %s port name", kind)
		}
		if slices.Contains(out, n) {
			return nil, fmt.Errorf("duplicate %s port %q", kind, n)
		}
		out = append(out, n)
	}
	return out, nil
}

// Factory returns a registry factory for a port with the given options.
func Factory(opts Options) registry.Factory {
	return func(context.Context) (registry.Subsystem, error) {
		return New(opts)
	}
}

// Inputs returns the published input port names.
func (p *Port) Inputs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.inputs)
}

// Outputs returns the published output port names.
func (p *Port) Outputs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.outputs)
}

// Open reports whether the ports are still published.
func (p *Port) Open() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}

// Close unpublishes the ports.
func (p *Port) Close(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	p.inputs, p.outputs = nil, nil
	return nil
}
