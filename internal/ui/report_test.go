package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/treesync"
)

func TestPrintReport(t *testing.T) {
	DisableColors()
	defer EnableColors()

	r := &treesync.Report{
		Tree:   "lib",
		Source: "/res/lib",
		Dest:   "/docs/lib",
		Items: []treesync.Item{
			{Name: "abs", Action: treesync.ActionAdded, Type: treesync.EntryDir, Bytes: 2048},
			{Name: "examples", Action: treesync.ActionReplaced, Type: treesync.EntryDir},
			{Name: "rj", Action: treesync.ActionUnchanged, Type: treesync.EntryDir},
			{Name: "broken", Action: treesync.ActionFailed, Type: treesync.EntryFile, Err: errors.New("permission denied")},
		},
	}

	var buf bytes.Buffer
	PrintReport(&buf, r, false)
	out := buf.String()

	for _, want := range []string{
		"+ Added      abs (dir, 2.0 kB)",
		SymbolReplaced + " Replaced   examples (dir)",
		"broken (file) permission denied",
		"Synced lib: /res/lib -> /docs/lib",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "= Unchanged") {
		t.Error("unchanged entries should be hidden without verbose")
	}

	buf.Reset()
	PrintReport(&buf, r, true)
	if !strings.Contains(buf.String(), "= Unchanged  rj") {
		t.Errorf("expected unchanged entry in verbose output, got:\n%s", buf.String())
	}
}

func TestPrintStates(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintStates(&buf, []registry.Status{
		{Variant: registry.MIDI, State: registry.StateFailed, Err: errors.New("no device")},
		{Variant: registry.OSC, State: registry.StateActive},
	})

	out := buf.String()
	if !strings.Contains(out, "midi     Failed no device") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "osc      Active") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
