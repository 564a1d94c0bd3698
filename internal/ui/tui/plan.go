package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/pdparty/internal/treesync"
	"github.com/klauern/pdparty/internal/ui"
)

// PlanAction is the action chosen in the plan viewer.
type PlanAction int

const (
	// PlanActionNone means the user quit without choosing.
	PlanActionNone PlanAction = iota
	// PlanActionSync means the user confirmed synchronizing Trees.
	PlanActionSync
)

// PlanResult contains the outcome of the plan viewer.
type PlanResult struct {
	Action PlanAction
	Trees  []string
}

type planKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Sync      key.Binding
	SyncAll   key.Binding
	Unchanged key.Binding
	Filter    key.Binding
	ClearFlt  key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultPlanKeyMap() planKeyMap {
	return planKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync tree"),
		),
		SyncAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "sync all"),
		),
		Unchanged: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "toggle unchanged"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFlt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type planRow struct {
	report *treesync.Report
	item   treesync.Item
}

// PlanModel is the BubbleTea model that lists the pending work of a dry run,
// one row per top-level entry.
type PlanModel struct {
	table         table.Model
	reports       []*treesync.Report
	rows          []planRow
	filtered      []planRow
	keys          planKeyMap
	result        PlanResult
	filter        string
	filtering     bool
	hideUnchanged bool
	showHelp      bool
	confirmMode   bool
	confirmMsg    string
	notice        string
	width         int
	height        int
	quitting      bool
}

// NewPlanModel creates a plan viewer over dry-run reports.
func NewPlanModel(reports []*treesync.Report) PlanModel {
	var rows []planRow
	for _, r := range reports {
		for _, it := range r.Items {
			rows = append(rows, planRow{report: r, item: it})
		}
	}

	columns := []table.Column{
		{Title: "Tree", Width: 10},
		{Title: "Entry", Width: 32},
		{Title: "Action", Width: 10},
		{Title: "Type", Width: 8},
		{Title: "Detail", Width: 36},
	}

	return PlanModel{
		table:    newTable(columns, planRowsToTable(rows)),
		reports:  reports,
		rows:     rows,
		filtered: rows,
		keys:     defaultPlanKeyMap(),
	}
}

func planRowsToTable(rows []planRow) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		detail := ""
		if r.item.Err != nil {
			detail = r.item.Err.Error()
		}
		out[i] = table.Row{
			r.report.Tree,
			truncateText(r.item.Name, 32),
			ui.Title(string(r.item.Action)),
			string(r.item.Type),
			truncateText(detail, 36),
		}
	}
	return out
}

// Init implements tea.Model.
func (m PlanModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

	case tea.KeyMsg:
		if m.confirmMode {
			switch msg.String() {
			case "y", "Y":
				m.quitting = true
				return m, tea.Quit
			case "n", "N", "esc":
				m.confirmMode = false
				m.confirmMsg = ""
				m.result = PlanResult{}
			}
			return m, nil
		}

		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
			case "esc":
				m.filter = ""
				m.filtering = false
				m.applyFilter()
			case "backspace":
				if len(m.filter) > 0 {
					m.filter = m.filter[:len(m.filter)-1]
					m.applyFilter()
				}
			default:
				if len(msg.String()) == 1 {
					m.filter += msg.String()
					m.applyFilter()
				}
			}
			return m, nil
		}

		m.notice = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Filter):
			m.filtering = true
			return m, nil

		case key.Matches(msg, m.keys.ClearFlt):
			m.filter = ""
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Unchanged):
			m.hideUnchanged = !m.hideUnchanged
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Sync):
			if row, ok := m.selected(); ok {
				m.result = PlanResult{Action: PlanActionSync, Trees: []string{row.report.Tree}}
				m.confirmMode = true
				m.confirmMsg = fmt.Sprintf("Synchronize %s into %s? (y/n)", row.report.Tree, row.report.Dest)
			}
			return m, nil

		case key.Matches(msg, m.keys.SyncAll):
			trees := m.pendingTrees()
			if len(trees) == 0 {
				m.notice = "Everything is up to date"
				return m, nil
			}
			m.result = PlanResult{Action: PlanActionSync, Trees: trees}
			m.confirmMode = true
			m.confirmMsg = fmt.Sprintf("Synchronize %s? (y/n)", strings.Join(trees, ", "))
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// pendingTrees lists trees whose plan contains anything but unchanged entries.
func (m PlanModel) pendingTrees() []string {
	var trees []string
	for _, r := range m.reports {
		if r.TotalChanged() > 0 || len(r.Failed()) > 0 {
			trees = append(trees, r.Tree)
		}
	}
	return trees
}

func (m *PlanModel) applyFilter() {
	lowerFilter := strings.ToLower(m.filter)
	var filtered []planRow
	for _, r := range m.rows {
		if m.hideUnchanged && r.item.Action == treesync.ActionUnchanged {
			continue
		}
		if lowerFilter != "" &&
			!strings.Contains(strings.ToLower(r.item.Name), lowerFilter) &&
			!strings.Contains(r.report.Tree, lowerFilter) &&
			!strings.Contains(string(r.item.Action), lowerFilter) {
			continue
		}
		filtered = append(filtered, r)
	}
	m.filtered = filtered
	m.table.SetRows(planRowsToTable(m.filtered))
	if m.table.Cursor() >= len(m.filtered) {
		m.table.SetCursor(max(len(m.filtered)-1, 0))
	}
}

func (m PlanModel) selected() (planRow, bool) {
	cursor := m.table.Cursor()
	if cursor >= 0 && cursor < len(m.filtered) {
		return m.filtered[cursor], true
	}
	return planRow{}, false
}

// View implements tea.Model.
func (m PlanModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render("PdParty Resource Plan"))
	b.WriteString("\n\n")

	if m.filter != "" || m.filtering {
		filterVal := Styles.FilterInput.Render(m.filter)
		if m.filtering {
			filterVal += "█"
		}
		b.WriteString(Styles.Filter.Render("Filter: ") + filterVal + "\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.confirmMode {
		b.WriteString("\n")
		b.WriteString(Styles.Confirm.Render(m.confirmMsg))
		return b.String()
	}

	if row, ok := m.selected(); ok {
		width := m.width
		if width <= 0 {
			width = 80
		}
		detail := formatDetail("Source: ", filepath.Join(row.report.Source, row.item.Name), width-2)
		if row.item.Err != nil {
			detail += "\n" + formatDetail("Error:  ", row.item.Err.Error(), width-2)
		}
		b.WriteString(Styles.Detail.Render(detail))
		b.WriteString("\n")
	}

	status := m.statusLine()
	if m.notice != "" {
		status += " • " + m.notice
	}
	b.WriteString(Styles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}
	return b.String()
}

func (m PlanModel) statusLine() string {
	var added, replaced, failed int
	for _, r := range m.reports {
		added += len(r.Added())
		replaced += len(r.Replaced())
		failed += len(r.Failed())
	}
	status := fmt.Sprintf("%d to add, %d to replace, %d failed", added, replaced, failed)
	if len(m.filtered) != len(m.rows) {
		status += fmt.Sprintf(" (showing %d of %d)", len(m.filtered), len(m.rows))
	}
	return status
}

func (m PlanModel) renderShortHelp() string {
	keys := []string{
		"↑/↓ navigate",
		"s sync tree",
		"a sync all",
		"u unchanged",
		"/ filter",
		"? help",
		"q quit",
	}
	return Styles.Help.Render(strings.Join(keys, " • "))
}

func (m PlanModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down

Actions:
  s        Synchronize the selected entry's tree
  a        Synchronize every tree with pending changes
  u        Show or hide unchanged entries

Filter:
  /        Start filtering
  Esc      Clear filter
  Enter    Finish filtering

General:
  ?        Toggle full help
  q        Quit`
	return Styles.Help.Render(help)
}

// Result returns the result of the user interaction.
func (m PlanModel) Result() PlanResult {
	return m.result
}

// RunPlan runs the interactive plan viewer and returns the chosen action.
func RunPlan(reports []*treesync.Report) (PlanResult, error) {
	model := NewPlanModel(reports)
	if len(model.rows) == 0 {
		return PlanResult{}, nil
	}

	finalModel, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return PlanResult{}, err
	}
	if m, ok := finalModel.(PlanModel); ok {
		return m.Result(), nil
	}
	return PlanResult{}, nil
}
