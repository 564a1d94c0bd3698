// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It includes a harness for running CLI commands against isolated resource
// and user trees, fixture management, and assertion helpers.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/pdparty/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands with every pdparty path pointed into a
// per-test temp directory.
type Harness struct {
	t       *testing.T
	baseDir string
	env     map[string]string
}

// NewHarness creates a harness with empty resources and user trees, an
// isolated PDPARTY_HOME and an ephemeral OSC port.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	h := &Harness{
		t:       t,
		baseDir: t.TempDir(),
		env:     make(map[string]string),
	}

	h.SetEnv("PDPARTY_HOME", h.HomeDir())
	h.SetEnv("PDPARTY_PATHS_RESOURCES", h.ResourcesDir())
	h.SetEnv("PDPARTY_PATHS_USER", h.UserDir())
	h.SetEnv("PDPARTY_PATHS_LOCKS", filepath.Join(h.HomeDir(), "locks"))
	h.SetEnv("PDPARTY_SUBSYSTEMS_OSC_ADDR", "127.0.0.1:0")
	h.SetEnv("PDPARTY_OUTPUT_COLOR", "never")
	h.SetEnv("PDPARTY_OUTPUT_PROGRESS", "never")

	return h
}

// SetEnv sets an environment variable for CLI commands run through this harness.
// The environment will be restored after the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.env[key] = value
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated pdparty home (config and locks).
func (h *Harness) HomeDir() string {
	return filepath.Join(h.baseDir, "home")
}

// ResourcesDir returns the bundled resource root.
func (h *Harness) ResourcesDir() string {
	return filepath.Join(h.baseDir, "resources")
}

// UserDir returns the user-writable destination root.
func (h *Harness) UserDir() string {
	return filepath.Join(h.baseDir, "Documents")
}

// Run executes a CLI command with the given arguments and captures stdout.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "pdparty" {
		args = append([]string{"pdparty"}, args...)
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Drain concurrently; output larger than the pipe buffer would block.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
