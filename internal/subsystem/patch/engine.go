// Package patch holds the patch engine's resource lifecycle. It indexes the
// abstractions available in the synchronized lib tree and tracks whether
// DSP is running; executing patches is out of scope.
package patch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/registry"
)

// AbstractionPattern matches the files indexed from the lib tree.
const AbstractionPattern = "**/*.pd"

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("patch engine closed")

// Engine is the patch-execution subsystem.
type Engine struct {
	libDir string
	logger *slog.Logger

	mu     sync.RWMutex
	index  map[string]string // abstraction name -> path relative to libDir
	dspOn  bool
	closed bool
}

// New indexes libDir and starts DSP. It fails if libDir does not exist.
func New(ctx context.Context, libDir string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = logging.Default()
	}
	info, err := os.Stat(libDir)
	if err != nil {
		return nil, fmt.Errorf("open lib tree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open lib tree: %s is not a directory", libDir)
	}

	e := &Engine{libDir: libDir, logger: logger, dspOn: true}
	if err := e.reindex(ctx); err != nil {
		return nil, err
	}
	logger.Debug("patch engine started", logging.Path(libDir), logging.Count(len(e.index)))
	return e, nil
}

// Factory returns a registry factory for an engine over libDir.
func Factory(libDir string, logger *slog.Logger) registry.Factory {
	return func(ctx context.Context) (registry.Subsystem, error) {
		return New(ctx, libDir, logger)
	}
}

func (e *Engine) reindex(ctx context.Context) error {
	index := make(map[string]string)
	err := doublestar.GlobWalk(os.DirFS(e.libDir), AbstractionPattern, func(p string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		// The shallowest path wins when names collide.
		if prev, ok := index[name]; ok && strings.Count(prev, "/") <= strings.Count(p, "/") {
			return nil
		}
		index[name] = p
		return nil
	})
	if err != nil {
		return fmt.Errorf("index lib tree: %w", err)
	}

	e.mu.Lock()
	e.index = index
	e.mu.Unlock()
	return nil
}

// LibDir returns the indexed tree root.
func (e *Engine) LibDir() string { return e.libDir }

// Abstractions returns the sorted abstraction names.
func (e *Engine) Abstractions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.index))
	for name := range e.index {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the path of an abstraction relative to the lib tree.
func (e *Engine) Resolve(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.index[name]
	return p, ok
}

// DSP reports whether audio processing is running.
func (e *Engine) DSP() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dspOn
}

// Suspend stops DSP.
func (e *Engine) Suspend(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.dspOn = false
	return nil
}

// Resume restarts DSP and picks up abstractions added while suspended.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.mu.Unlock()

	if err := e.reindex(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	e.dspOn = true
	e.mu.Unlock()
	return nil
}

// Close stops DSP and drops the index.
func (e *Engine) Close(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.dspOn = false
	e.index = nil
	return nil
}
