package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/pdparty/internal/util"
)

// AssertSuccess fails the test if the command did not succeed.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success() {
		t.Fatalf("expected success, got error: %v\nstdout: %s", r.Err, r.Stdout)
	}
}

// AssertError fails the test if the command did not return an error.
func AssertError(t *testing.T, r *Result) {
	t.Helper()
	if r.Success() {
		t.Fatalf("expected error, but command succeeded\nstdout: %s", r.Stdout)
	}
}

// AssertExitCode fails the test if the exit code doesn't match.
func AssertExitCode(t *testing.T, r *Result, expected int) {
	t.Helper()
	if r.ExitCode != expected {
		t.Errorf("expected exit code %d, got %d\nerror: %v\nstdout: %s", expected, r.ExitCode, r.Err, r.Stdout)
	}
}

// AssertErrorContains fails the test if the error message doesn't contain the substring.
func AssertErrorContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if r.Success() {
		t.Fatalf("expected error containing %q, but command succeeded", substr)
	}
	if msg := r.Err.Error(); !strings.Contains(msg, substr) {
		t.Errorf("expected error to contain %q\ngot: %s", substr, msg)
	}
}

// AssertOutputContains fails the test if stdout doesn't contain the substring.
func AssertOutputContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if !strings.Contains(r.Stdout, substr) {
		t.Errorf("expected output to contain %q\ngot: %s", substr, r.Stdout)
	}
}

// AssertOutputNotContains fails the test if stdout contains the substring.
func AssertOutputNotContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if strings.Contains(r.Stdout, substr) {
		t.Errorf("expected output to NOT contain %q\ngot: %s", substr, r.Stdout)
	}
}

// Counts is the per-action tally printed in a tree's sync summary.
type Counts struct {
	Added     int
	Replaced  int
	Unchanged int
	Failed    int
}

func (c Counts) String() string {
	return fmt.Sprintf("added=%d replaced=%d unchanged=%d failed=%d", c.Added, c.Replaced, c.Unchanged, c.Failed)
}

// AssertSummary fails the test unless stdout holds a summary for tree with
// exactly the given counts.
func AssertSummary(t *testing.T, r *Result, tree string, want Counts) {
	t.Helper()
	got, ok := parseSummary(r.Stdout, tree)
	if !ok {
		t.Errorf("no summary for tree %s\ngot: %s", tree, r.Stdout)
		return
	}
	if got != want {
		t.Errorf("summary for %s: expected %s, got %s", tree, want, got)
	}
}

// parseSummary reads the count lines that follow "Synced <tree>:".
func parseSummary(out, tree string) (Counts, bool) {
	var c Counts
	header := "Synced " + tree + ":"
	found := false
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !found {
			found = strings.HasPrefix(line, header)
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			break
		}
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &n); err != nil {
			continue
		}
		switch label {
		case "Added":
			c.Added = n
		case "Replaced":
			c.Replaced = n
		case "Unchanged":
			c.Unchanged = n
		case "Failed":
			c.Failed = n
			return c, true
		}
	}
	return c, false
}

// AssertEntryMirrors fails the test unless the named top-level entry is
// identical in the source and destination trees.
func AssertEntryMirrors(t *testing.T, source, dest, name string) {
	t.Helper()
	want := util.ReadTree(t, filepath.Join(source, name))
	got := util.ReadTree(t, filepath.Join(dest, name))
	if len(want) != len(got) {
		t.Errorf("entry %s: expected %d paths, got %d\nwant: %v\ngot:  %v", name, len(want), len(got), want, got)
		return
	}
	for path, content := range want {
		if g, ok := got[path]; !ok || g != content {
			t.Errorf("entry %s: %s differs: expected %q, got %q", name, path, content, g)
		}
	}
}

// AssertNoStagingArtifacts fails the test if the synchronizer's work
// directory was left behind in dir.
func AssertNoStagingArtifacts(t *testing.T, dir string) {
	t.Helper()
	work := filepath.Join(dir, ".pdsync")
	if _, err := os.Lstat(work); err == nil {
		entries, _ := os.ReadDir(work)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("leftover work directory %s: %v", work, names)
	}
}

// AssertFileExists fails the test if the file doesn't exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Errorf("expected file to NOT exist: %s", path)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 - path is provided by test code
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

// AssertFileContains fails the test if the file doesn't contain the substring.
func AssertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	if data := readFile(t, path); !strings.Contains(data, substr) {
		t.Errorf("expected file %s to contain %q\ngot: %s", path, substr, data)
	}
}

// AssertFileEquals fails the test if the file content doesn't match exactly.
func AssertFileEquals(t *testing.T, path, expected string) {
	t.Helper()
	if data := readFile(t, path); data != expected {
		t.Errorf("file content mismatch for %s\nexpected: %q\ngot: %q", path, expected, data)
	}
}
