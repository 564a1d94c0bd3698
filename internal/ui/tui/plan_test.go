package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/pdparty/internal/treesync"
)

func testReports() []*treesync.Report {
	return []*treesync.Report{
		{
			Tree:   "lib",
			Source: "/bundle/lib",
			Dest:   "/docs/lib",
			DryRun: true,
			Items: []treesync.Item{
				{Name: "abs", Action: treesync.ActionAdded, Type: treesync.EntryDir},
				{Name: "examples", Action: treesync.ActionReplaced, Type: treesync.EntryDir},
			},
		},
		{
			Tree:   "samples",
			Source: "/bundle/samples",
			Dest:   "/docs/samples",
			DryRun: true,
			Items: []treesync.Item{
				{Name: "drone", Action: treesync.ActionUnchanged, Type: treesync.EntryDir},
			},
		},
		{
			Tree:   "tests",
			Source: "/bundle/tests",
			Dest:   "/docs/tests",
			DryRun: true,
			Items: []treesync.Item{
				{Name: "osc", Action: treesync.ActionFailed, Type: treesync.EntryDir, Err: errors.New("permission denied")},
			},
		},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m PlanModel, msg tea.Msg) PlanModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(PlanModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return pm
}

func TestNewPlanModel(t *testing.T) {
	m := NewPlanModel(testReports())

	if len(m.rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(m.rows))
	}
	if len(m.filtered) != 4 {
		t.Errorf("expected 4 filtered rows, got %d", len(m.filtered))
	}
	if m.Init() != nil {
		t.Error("expected nil command from Init")
	}
	if got := m.Result().Action; got != PlanActionNone {
		t.Errorf("expected no action initially, got %v", got)
	}
}

func TestPlanModel_Filter(t *testing.T) {
	m := NewPlanModel(testReports())
	m.filter = "exam"
	m.applyFilter()

	if len(m.filtered) != 1 || m.filtered[0].item.Name != "examples" {
		t.Fatalf("expected only examples, got %+v", m.filtered)
	}

	m.filter = "tests"
	m.applyFilter()
	if len(m.filtered) != 1 || m.filtered[0].item.Name != "osc" {
		t.Errorf("expected filter to match tree names, got %+v", m.filtered)
	}
}

func TestPlanModel_FilterKeys(t *testing.T) {
	m := NewPlanModel(testReports())

	m = update(t, m, keyRunes("/"))
	if !m.filtering {
		t.Fatal("expected filtering mode")
	}
	m = update(t, m, keyRunes("d"))
	m = update(t, m, keyRunes("r"))
	if m.filter != "dr" || len(m.filtered) != 1 {
		t.Fatalf("expected filter %q to match drone, got %q with %d rows", "dr", m.filter, len(m.filtered))
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.filter != "d" {
		t.Errorf("expected backspace to trim filter, got %q", m.filter)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.filtering || m.filter != "" || len(m.filtered) != 4 {
		t.Errorf("expected esc to clear the filter")
	}
}

func TestPlanModel_ToggleUnchanged(t *testing.T) {
	m := NewPlanModel(testReports())

	m = update(t, m, keyRunes("u"))
	if len(m.filtered) != 3 {
		t.Fatalf("expected unchanged rows hidden, got %d rows", len(m.filtered))
	}
	for _, r := range m.filtered {
		if r.item.Action == treesync.ActionUnchanged {
			t.Errorf("unchanged row %s still listed", r.item.Name)
		}
	}

	m = update(t, m, keyRunes("u"))
	if len(m.filtered) != 4 {
		t.Errorf("expected all rows back, got %d", len(m.filtered))
	}
}

func TestPlanModel_SyncSelectedTree(t *testing.T) {
	m := NewPlanModel(testReports())

	m = update(t, m, keyRunes("s"))
	if !m.confirmMode {
		t.Fatal("expected confirm mode")
	}
	if !strings.Contains(m.confirmMsg, "lib") {
		t.Errorf("expected confirm message to name lib, got %q", m.confirmMsg)
	}

	next, cmd := m.Update(keyRunes("y"))
	m = next.(PlanModel)
	if cmd == nil {
		t.Error("expected quit command after confirming")
	}
	res := m.Result()
	if res.Action != PlanActionSync || len(res.Trees) != 1 || res.Trees[0] != "lib" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestPlanModel_SyncAllAndCancel(t *testing.T) {
	m := NewPlanModel(testReports())

	m = update(t, m, keyRunes("a"))
	want := []string{"lib", "tests"}
	if got := m.result.Trees; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected pending trees %v, got %v", want, got)
	}

	m = update(t, m, keyRunes("n"))
	if m.confirmMode {
		t.Error("expected confirm mode to end")
	}
	if m.Result().Action != PlanActionNone {
		t.Errorf("expected cancelled result, got %+v", m.Result())
	}
}

func TestPlanModel_SyncAllNothingPending(t *testing.T) {
	reports := testReports()[1:2]
	m := NewPlanModel(reports)

	m = update(t, m, keyRunes("a"))
	if m.confirmMode {
		t.Error("expected no confirmation when nothing is pending")
	}
	if !strings.Contains(m.View(), "up to date") {
		t.Error("expected notice in view")
	}
}

func TestPlanModel_View(t *testing.T) {
	m := NewPlanModel(testReports())
	view := m.View()

	for _, want := range []string{"PdParty Resource Plan", "abs", "1 to add, 1 to replace, 1 failed", "Source:"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	m = update(t, m, keyRunes("?"))
	if !strings.Contains(m.View(), "Toggle full help") {
		t.Error("expected full help")
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Errorf("expected window size recorded, got %dx%d", m.width, m.height)
	}

	m = update(t, m, keyRunes("q"))
	if m.View() != "" {
		t.Error("expected empty view after quitting")
	}
}

func TestRunPlan_NoRows(t *testing.T) {
	res, err := RunPlan(nil)
	if err != nil {
		t.Fatalf("RunPlan() error = %v", err)
	}
	if res.Action != PlanActionNone {
		t.Errorf("expected no action, got %+v", res)
	}
}
