package ui

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/treesync"
)

// PrintReport writes one line per entry followed by the report summary.
// Unchanged entries are listed only when verbose is set.
func PrintReport(w io.Writer, r *treesync.Report, verbose bool) {
	for _, item := range r.Items {
		if item.Action == treesync.ActionUnchanged && !verbose {
			continue
		}
		line := fmt.Sprintf("  %s %-10s %s", ActionSymbol(item.Action), ActionLabel(item.Action), item.Name)
		if item.Type != "" {
			line += Dim(fmt.Sprintf(" (%s", item.Type))
			if item.Bytes > 0 {
				line += Dim(", " + humanize.Bytes(uint64(item.Bytes)))
			}
			line += Dim(")")
		}
		if item.Err != nil {
			line += " " + Error(item.Err.Error())
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w, r.Summary())
}

// PrintStates writes the registry state table.
func PrintStates(w io.Writer, states []registry.Status) {
	for _, s := range states {
		line := fmt.Sprintf("  %-8s %s", s.Variant, StateLabel(s.State))
		if s.Err != nil {
			line += " " + Dim(s.Err.Error())
		}
		_, _ = fmt.Fprintln(w, line)
	}
}
