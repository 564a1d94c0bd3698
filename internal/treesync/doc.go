// Package treesync reconciles bundled, read-only resource trees into a
// user-writable location.
//
// # Model
//
// A Pair names one source tree (the bundled resources) and one destination
// tree (the user's documents). Only the top-level entries of the source are
// managed: each one is Added when missing from the destination, Replaced when
// it differs, and left Unchanged when a fingerprint comparison finds no
// difference. Destination entries without a source counterpart are never
// touched.
//
// # Stage then swap
//
// New content is always copied into the tree's work directory first:
//
//	<dest>/.pdsync/<name>.stage-<uuid>
//
// and only then moved into place. On Linux the swap is a single
// renameat2(RENAME_EXCHANGE); elsewhere the old entry is first parked as
// .pdsync/<name>.old-<uuid>. Leftovers from an interrupted run are repaired
// the next time the entry is synchronized, so the destination entry is
// always the complete old or the complete new version. Recovery reads only
// the work directory, which is removed again once it is empty. A source
// entry named .pdsync is never synchronized.
//
// # Usage
//
//	s, err := treesync.New(treesync.Options{Workers: 4, LockDir: util.LocksPath()})
//	report, err := s.Synchronize(ctx, treesync.NewPair("lib", resources, documents))
//	if errors.Is(err, treesync.ErrBusy) {
//	    // another synchronize for this pair is in flight
//	}
//	for _, item := range report.Failed() {
//	    log.Printf("%s: %v", item.Name, item.Err)
//	}
//
// Per-entry failures never surface as the returned error; they are recorded
// in the Report and the caller decides whether they are acceptable.
package treesync
