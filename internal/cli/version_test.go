package cli

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"testing"
)

func runVersion(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := newCommand(&buf, io.Discard).Run(context.Background(), []string{"pdparty", "version"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return buf.String()
}

func TestVersionCommandOutputFormat(t *testing.T) {
	output := runVersion(t)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines of output, got %d: %q", len(lines), output)
	}

	if !strings.HasPrefix(lines[0], "pdparty version ") {
		t.Errorf("first line should start with 'pdparty version ', got %q", lines[0])
	}

	for i, line := range lines[1:] {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %d should be indented with 2 spaces, got %q", i+2, line)
		}
	}

	expectedLabels := []string{"version", "commit:", "built:", "go:"}
	for i, label := range expectedLabels {
		if !strings.Contains(lines[i], label) {
			t.Errorf("line %d should contain %q, got %q", i+1, label, lines[i])
		}
	}
}

func TestVersionCommandIncludesVariables(t *testing.T) {
	output := runVersion(t)

	for _, want := range []string{Version, Commit, BuildDate, runtime.Version()} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got %q", want, output)
		}
	}
}

func TestVersionCommandDefinition(t *testing.T) {
	cmd := versionCommand()

	if cmd.Name != "version" {
		t.Errorf("command name = %q, want %q", cmd.Name, "version")
	}
	if !strings.Contains(cmd.Usage, "version") {
		t.Errorf("usage should mention version, got %q", cmd.Usage)
	}
	if cmd.Action == nil {
		t.Error("command should have an action function")
	}
}
