package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/treesync"
)

// SyncObserver renders one bar per tree synchronization. It satisfies
// treesync.Observer.
type SyncObserver struct {
	w     io.Writer
	force bool

	mu   sync.Mutex
	bars map[string]*Bar
}

// NewSyncObserver returns an observer writing bars to w. With force set,
// bars render even when w is not a terminal.
func NewSyncObserver(w io.Writer, force bool) *SyncObserver {
	return &SyncObserver{
		w:     w,
		force: force,
		bars:  make(map[string]*Bar),
	}
}

func (o *SyncObserver) SyncStarted(tree string, entries int) {
	bar := New(Options{
		Max:         int64(entries),
		Description: "Syncing " + tree,
		Writer:      o.w,
		Force:       o.force,
	})

	o.mu.Lock()
	o.bars[tree] = bar
	o.mu.Unlock()
}

func (o *SyncObserver) EntryFinished(tree string, item treesync.Item) {
	o.mu.Lock()
	defer o.mu.Unlock()

	bar, ok := o.bars[tree]
	if !ok {
		return
	}
	bar.Describe(fmt.Sprintf("Syncing %s: %s", tree, item.Name))
	if err := bar.Add(1); err != nil {
		logging.Debug("progress update failed", logging.Err(err))
	}
}

func (o *SyncObserver) SyncFinished(report *treesync.Report) {
	o.mu.Lock()
	bar, ok := o.bars[report.Tree]
	delete(o.bars, report.Tree)
	o.mu.Unlock()

	if !ok {
		return
	}
	bar.Describe("Synced " + report.Tree)
	if err := bar.Finish(); err != nil {
		logging.Debug("progress finish failed", logging.Err(err))
	}
}

// Active returns the number of trees with an open bar.
func (o *SyncObserver) Active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.bars)
}

var _ treesync.Observer = (*SyncObserver)(nil)
