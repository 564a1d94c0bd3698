package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/util"
)

type testEnv struct {
	resources string
	user      string
	home      string
}

// setupEnv points every configurable path at a temp dir through the
// PDPARTY_* environment and seeds a bundled resource tree.
func setupEnv(t *testing.T) testEnv {
	t.Helper()
	base := t.TempDir()
	env := testEnv{
		resources: filepath.Join(base, "resources"),
		user:      filepath.Join(base, "Documents"),
		home:      filepath.Join(base, "home"),
	}
	util.WriteTree(t, env.resources, map[string]string{
		"lib/abs/adsr.pd":         "#N canvas adsr;",
		"lib/examples/tone.pd":    "#N canvas tone;",
		"samples/drone/_main.pd":  "#N canvas drone;",
		"samples/drone/info.html": "<p>drone</p>",
		"tests/osc/osc-test.pd":   "#N canvas osc;",
	})

	t.Setenv(util.HomeEnv, env.home)
	t.Setenv("PDPARTY_PATHS_RESOURCES", env.resources)
	t.Setenv("PDPARTY_PATHS_USER", env.user)
	t.Setenv("PDPARTY_PATHS_LOCKS", filepath.Join(base, "locks"))
	t.Setenv("PDPARTY_SUBSYSTEMS_OSC_ADDR", "127.0.0.1:0")
	t.Setenv("PDPARTY_OUTPUT_PROGRESS", "never")
	t.Setenv("PDPARTY_OUTPUT_COLOR", "never")
	return env
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newCommand(&out, io.Discard).Run(context.Background(), append([]string{"pdparty"}, args...))
	return out.String(), err
}

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

func TestConfigureLogging(t *testing.T) {
	tests := map[string]struct {
		args      []string
		wantDebug bool
	}{
		"no flags uses default info level": {
			args: []string{"version"},
		},
		"verbose flag enables info level": {
			args: []string{"--verbose", "version"},
		},
		"debug flag enables debug level": {
			args:      []string{"--debug", "version"},
			wantDebug: true,
		},
		"json logs keep the level": {
			args: []string{"--json-logs", "version"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			logging.SetDefault(logging.New(logging.DefaultOptions()))
			t.Cleanup(func() { logging.SetDefault(logging.New(logging.DefaultOptions())) })

			if _, err := runCLI(t, tt.args...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			got := slog.Default().Enabled(context.Background(), slog.LevelDebug)
			if got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestHelpListsCommands(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, want := range []string{"sync", "status", "run", "open", "config", "version"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestSyncCommand(t *testing.T) {
	env := setupEnv(t)

	out, err := runCLI(t, "sync")
	if err != nil {
		t.Fatalf("sync error = %v\n%s", err, out)
	}
	for _, want := range []string{"Added", "abs", "Synced lib", "Synced samples", "Synced tests"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	for _, p := range []string{"lib/abs/adsr.pd", "samples/drone/_main.pd", "tests/osc/osc-test.pd"} {
		if _, err := os.Stat(filepath.Join(env.user, p)); err != nil {
			t.Errorf("expected %s to be synced: %v", p, err)
		}
	}

	out, err = runCLI(t, "sync", "lib")
	if err != nil {
		t.Fatalf("second sync error = %v", err)
	}
	if !strings.Contains(out, "Added:     0") || !strings.Contains(out, "Unchanged: 2") {
		t.Errorf("expected an idempotent second run, got:\n%s", out)
	}
	if strings.Contains(out, "Synced samples") {
		t.Errorf("expected only lib to be synced, got:\n%s", out)
	}
}

func TestSyncCommand_DryRun(t *testing.T) {
	env := setupEnv(t)

	out, err := runCLI(t, "sync", "--dry-run", "samples")
	if err != nil {
		t.Fatalf("sync error = %v", err)
	}
	if !strings.Contains(out, "Dry run - no changes made") {
		t.Errorf("expected dry run banner, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.user, "samples")); !os.IsNotExist(err) {
		t.Errorf("dry run must not create the destination, stat err = %v", err)
	}
}

func TestSyncCommand_Errors(t *testing.T) {
	env := setupEnv(t)

	if _, err := runCLI(t, "sync", "docs"); err == nil || !strings.Contains(err.Error(), "unknown tree") {
		t.Errorf("expected unknown tree error, got %v", err)
	}

	if err := os.RemoveAll(filepath.Join(env.resources, "tests")); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "sync", "lib", "tests")
	if err == nil {
		t.Fatal("expected an error for a missing source tree")
	}
	if !strings.Contains(err.Error(), "tests:") {
		t.Errorf("expected error to name the tree, got %v", err)
	}
	if !strings.Contains(out, "Synced lib") {
		t.Errorf("expected lib to sync despite the tests failure, got:\n%s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupEnv(t)

	out, err := runCLI(t, "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if strings.Count(out, "Dry run - no changes made") != 3 {
		t.Errorf("expected one plan per tree, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.user, "lib")); !os.IsNotExist(err) {
		t.Errorf("status must not write, stat err = %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	env := setupEnv(t)
	path := filepath.Join(env.home, "config.yaml")

	out, err := runCLI(t, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(out, "not found") || !strings.Contains(out, "paths:") {
		t.Errorf("unexpected config output:\n%s", out)
	}
	if !strings.Contains(out, env.resources) {
		t.Errorf("expected environment override in output, got:\n%s", out)
	}

	if _, err := runCLI(t, "config", "--init"); err != nil {
		t.Fatalf("config --init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if _, err := runCLI(t, "config", "--init"); err == nil {
		t.Error("expected --init to refuse overwriting")
	}
	if _, err := runCLI(t, "config", "--init", "--force"); err != nil {
		t.Errorf("config --init --force error = %v", err)
	}

	out, err = runCLI(t, "config", "--toml")
	if err != nil {
		t.Fatalf("config --toml error = %v", err)
	}
	if !strings.Contains(out, "(loaded)") || !strings.Contains(out, "[paths]") {
		t.Errorf("unexpected toml output:\n%s", out)
	}
}

func TestConfigFlag(t *testing.T) {
	env := setupEnv(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	util.WriteFile(t, path, "[sync]\ntrees = [\"lib\"]\n")

	out, err := runCLI(t, "--config", path, "sync")
	if err != nil {
		t.Fatalf("sync error = %v", err)
	}
	if strings.Contains(out, "Synced samples") {
		t.Errorf("expected only the configured tree, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.user, "lib", "abs")); err != nil {
		t.Errorf("expected lib to be synced: %v", err)
	}
}

func TestOpenCommand(t *testing.T) {
	env := setupEnv(t)
	util.WriteFile(t, filepath.Join(env.user, "samples", "drone", "info.html"), "<p>drone</p>")

	out, err := runCLI(t, "open", "--print", "--scene", "samples/drone", "info.html")
	if err != nil {
		t.Fatalf("open error = %v", err)
	}
	want := "file://" + filepath.ToSlash(filepath.Join(env.user, "samples", "drone", "info.html"))
	if strings.TrimSpace(out) != want {
		t.Errorf("open --print = %q, want %q", strings.TrimSpace(out), want)
	}

	out, err = runCLI(t, "open", "--print", "https://puredata.info/docs")
	if err != nil {
		t.Fatalf("open error = %v", err)
	}
	if strings.TrimSpace(out) != "https://puredata.info/docs" {
		t.Errorf("absolute URLs pass through, got %q", out)
	}

	if _, err := runCLI(t, "open"); err == nil {
		t.Error("expected an error without a url")
	}
	if _, err := runCLI(t, "open", "--print", "--scene", "../outside", "x.html"); err == nil {
		t.Error("expected an error for a scene outside the user tree")
	}
}

func TestRunCommandOnce(t *testing.T) {
	env := setupEnv(t)

	out, err := runCLI(t, "run", "--once")
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, out)
	}
	for _, want := range []string{"Subsystems", "patch", "midi", "osc", "scene", "Active", "Synced samples", "Synced tests"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(env.user, "samples", "drone", "_main.pd")); err != nil {
		t.Errorf("expected background sync to finish: %v", err)
	}
}
