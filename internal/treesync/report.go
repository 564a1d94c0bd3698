package treesync

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Action represents the outcome recorded for one top-level entry.
type Action string

const (
	// ActionAdded indicates the entry was missing from the destination and was copied in.
	ActionAdded Action = "added"

	// ActionReplaced indicates a stale destination entry was swapped for a fresh copy.
	ActionReplaced Action = "replaced"

	// ActionUnchanged indicates the destination entry already matched the source.
	ActionUnchanged Action = "unchanged"

	// ActionFailed indicates staging or swapping failed; the destination was left as it was.
	ActionFailed Action = "failed"
)

// EntryType describes what a top-level source entry is.
type EntryType string

const (
	EntryDir     EntryType = "dir"
	EntryFile    EntryType = "file"
	EntrySymlink EntryType = "symlink"
)

// Item is the outcome of synchronizing a single top-level entry.
type Item struct {
	// Name is the entry name relative to the tree root.
	Name string

	// Action is the outcome recorded for the entry.
	Action Action

	// Type is the source entry type.
	Type EntryType

	// Bytes is the number of file bytes written while staging.
	Bytes int64

	// Duration is the time spent on the entry.
	Duration time.Duration

	// Err holds the underlying cause when Action is ActionFailed.
	Err error
}

// Success returns true unless the entry failed.
func (i Item) Success() bool {
	return i.Action != ActionFailed
}

// Report is the ordered outcome of one Synchronize or Plan call. Items are
// listed in source directory order.
type Report struct {
	// Tree is the pair name (lib, samples, tests).
	Tree string

	// Source and Dest are the tree roots.
	Source string
	Dest   string

	// Items holds one outcome per processed entry.
	Items []Item

	// DryRun is set on reports produced by Plan; no files were written.
	DryRun bool

	// Incomplete is set when the call was abandoned between entries.
	Incomplete bool

	Started  time.Time
	Finished time.Time
}

// Added returns entries that were added.
func (r *Report) Added() []Item {
	return r.filterByAction(ActionAdded)
}

// Replaced returns entries that were replaced.
func (r *Report) Replaced() []Item {
	return r.filterByAction(ActionReplaced)
}

// Unchanged returns entries that needed no work.
func (r *Report) Unchanged() []Item {
	return r.filterByAction(ActionUnchanged)
}

// Failed returns entries that could not be synchronized.
func (r *Report) Failed() []Item {
	return r.filterByAction(ActionFailed)
}

func (r *Report) filterByAction(action Action) []Item {
	var filtered []Item
	for _, it := range r.Items {
		if it.Action == action {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// Lookup returns the item recorded for name.
func (r *Report) Lookup(name string) (Item, bool) {
	for _, it := range r.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Success returns true if no entry failed and the call ran to completion.
func (r *Report) Success() bool {
	return !r.Incomplete && len(r.Failed()) == 0
}

// TotalChanged returns the number of entries that were added or replaced.
func (r *Report) TotalChanged() int {
	return len(r.Added()) + len(r.Replaced())
}

// TotalBytes returns the bytes written across all entries.
func (r *Report) TotalBytes() int64 {
	var n int64
	for _, it := range r.Items {
		n += it.Bytes
	}
	return n
}

// Elapsed returns the wall time of the call.
func (r *Report) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Summary returns a human-readable summary of the report.
func (r *Report) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("Synced %s: %s -> %s\n", r.Tree, r.Source, r.Dest))
	sb.WriteString(fmt.Sprintf("  Added:     %d\n", len(r.Added())))
	sb.WriteString(fmt.Sprintf("  Replaced:  %d\n", len(r.Replaced())))
	sb.WriteString(fmt.Sprintf("  Unchanged: %d\n", len(r.Unchanged())))
	sb.WriteString(fmt.Sprintf("  Failed:    %d\n", len(r.Failed())))
	if n := r.TotalBytes(); n > 0 {
		sb.WriteString(fmt.Sprintf("  Written:   %s\n", humanize.Bytes(uint64(n))))
	}

	if r.Incomplete {
		sb.WriteString("\nSynchronization was interrupted before all entries were processed\n")
	}

	if failed := r.Failed(); len(failed) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, f := range failed {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", f.Name, f.Err))
		}
	}

	return sb.String()
}
