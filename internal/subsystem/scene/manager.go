// Package scene tracks the active scene folder. Scene file parsing is out
// of scope.
package scene

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauern/pdparty/internal/registry"
)

var (
	// ErrNoScene is returned when no scene is open.
	ErrNoScene = errors.New("no scene open")
	// ErrOutsideRoot is returned for scene paths that escape the documents root.
	ErrOutsideRoot = errors.New("scene outside documents root")
	// ErrClosed is returned by operations on a closed manager.
	ErrClosed = errors.New("scene manager closed")
)

// Manager is the scene management subsystem.
type Manager struct {
	root string

	mu     sync.RWMutex
	folder string
	closed bool
}

// New creates a manager for scenes under root.
func New(root string) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve documents root: %w", err)
	}
	return &Manager{root: abs}, nil
}

// Factory returns a registry factory for a manager over root.
func Factory(root string) registry.Factory {
	return func(context.Context) (registry.Subsystem, error) {
		return New(root)
	}
}

// Root returns the documents root.
func (m *Manager) Root() string { return m.root }

// Open makes the directory at p the active scene. Relative paths are
// resolved against the documents root.
func (m *Manager) Open(p string) error {
	if !filepath.IsAbs(p) {
		p = filepath.Join(m.root, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(m.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("open %s: %w", p, ErrOutsideRoot)
	}

	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("open scene: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("open scene: %s is not a directory", p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.folder = p
	return nil
}

// Folder returns the active scene folder.
func (m *Manager) Folder() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.folder, m.folder != ""
}

// CloseScene deactivates the current scene.
func (m *Manager) CloseScene() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.folder == "" {
		return ErrNoScene
	}
	m.folder = ""
	return nil
}

// Close releases the manager.
func (m *Manager) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.folder = ""
	return nil
}
