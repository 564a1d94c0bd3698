package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Fixture provides helpers for creating test fixtures in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WritePatch writes a minimal Pd patch named after the file.
func (f *Fixture) WritePatch(relPath string) string {
	f.t.Helper()
	name := filepath.Base(relPath)
	return f.WriteFile(relPath, fmt.Sprintf("#N canvas 0 0 450 300 %s;\n#X obj 10 10 outlet~;\n", name))
}

// WriteScene writes a scene folder with a _main.pd entry patch.
func (f *Fixture) WriteScene(relPath string) string {
	f.t.Helper()
	f.WritePatch(filepath.Join(relPath, "_main.pd"))
	return filepath.Join(f.baseDir, relPath)
}

// Age sets the modification time of a path to d in the past.
func (f *Fixture) Age(relPath string, d time.Duration) {
	f.t.Helper()
	when := time.Now().Add(-d)
	if err := os.Chtimes(f.Path(relPath), when, when); err != nil {
		f.t.Fatalf("failed to age %s: %v", relPath, err)
	}
}

// MkdirAll creates a directory and all parent directories relative to the base.
func (f *Fixture) MkdirAll(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	if err := os.MkdirAll(fullPath, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	_, err := os.Stat(filepath.Join(f.baseDir, relPath))
	return err == nil
}

// ReadFile reads a file relative to the fixture base directory.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)
	// #nosec G304 - path is built from the test fixture root
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}
	return string(data)
}

// Resources returns a fixture over the bundled resource root.
func (h *Harness) Resources() *Fixture {
	return NewFixture(h.t, h.ResourcesDir())
}

// User returns a fixture over the user-writable root.
func (h *Harness) User() *Fixture {
	return NewFixture(h.t, h.UserDir())
}

// Home returns a fixture over the pdparty home directory.
func (h *Harness) Home() *Fixture {
	return NewFixture(h.t, h.HomeDir())
}

// SeedBundle writes a small bundle with abstractions, a scene and test patches.
func (h *Harness) SeedBundle() *Fixture {
	res := h.Resources()
	res.WritePatch("lib/abs/adsr.pd")
	res.WritePatch("lib/abs/lfo.pd")
	res.WritePatch("lib/examples/tone.pd")
	res.WriteScene("samples/drone")
	res.WriteFile("samples/drone/info.html", "<p>drone</p>")
	res.WritePatch("tests/osc/osc-test.pd")
	res.WritePatch("tests/midi/midi-test.pd")
	res.WriteFile("tests/.DS_Store", "junk")
	return res
}
