package treesync

// Observer receives progress callbacks from a Synchronizer. Callbacks for
// different entries may arrive concurrently.
type Observer interface {
	// SyncStarted is called once the source has been listed.
	SyncStarted(tree string, entries int)
	// EntryFinished is called after each entry has been processed.
	EntryFinished(tree string, item Item)
	// SyncFinished is called with the final report.
	SyncFinished(report *Report)
}

// Observers fans callbacks out to every observer in the slice.
type Observers []Observer

func (o Observers) SyncStarted(tree string, entries int) {
	for _, obs := range o {
		obs.SyncStarted(tree, entries)
	}
}

func (o Observers) EntryFinished(tree string, item Item) {
	for _, obs := range o {
		obs.EntryFinished(tree, item)
	}
}

func (o Observers) SyncFinished(report *Report) {
	for _, obs := range o {
		obs.SyncFinished(report)
	}
}

type nopObserver struct{}

func (nopObserver) SyncStarted(string, int)    {}
func (nopObserver) EntryFinished(string, Item) {}
func (nopObserver) SyncFinished(*Report)       {}
