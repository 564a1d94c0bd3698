package treesync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/klauern/pdparty/internal/logging"
)

// DefaultWorkers is the number of entries processed concurrently when
// Options.Workers is not set.
const DefaultWorkers = 4

// Options configures a Synchronizer.
type Options struct {
	// Workers bounds how many entries of one tree are processed at once.
	Workers int

	// Compare selects the unchanged check (default: content).
	Compare CompareMode

	// Ignore lists doublestar patterns excluded from copy and comparison.
	Ignore []string

	// LockDir holds cross-process lock files. Empty disables the file lock;
	// the in-process lock is always used.
	LockDir string

	// Observer receives progress callbacks.
	Observer Observer

	// Logger defaults to logging.Default().
	Logger *slog.Logger
}

// Synchronizer reconciles resource trees into user trees. It is safe for
// concurrent use; calls for the same pair are serialized by rejection.
type Synchronizer struct {
	opts     Options
	logger   *slog.Logger
	observer Observer

	mu       sync.Mutex
	inFlight map[string]struct{}

	// Filesystem operations, replaced in tests to inject faults.
	copyFile copyFileFunc
	rename   func(oldpath, newpath string) error
	exchange func(a, b string) error
}

// New creates a Synchronizer. It fails on invalid options.
func New(opts Options) (*Synchronizer, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Compare == "" {
		opts.Compare = CompareContent
	}
	if !opts.Compare.IsValid() {
		return nil, fmt.Errorf("unknown compare mode %q", opts.Compare)
	}
	if _, err := newMatcher(opts.Ignore); err != nil {
		return nil, err
	}

	s := &Synchronizer{
		opts:     opts,
		logger:   opts.Logger,
		observer: opts.Observer,
		inFlight: make(map[string]struct{}),
		copyFile: copyRegular,
		rename:   os.Rename,
		exchange: exchange,
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s, nil
}

// Synchronize reconciles every top-level entry of p.Source into p.Dest.
//
// Per-entry failures are recorded in the report and never returned as the
// error. The error is non-nil only when the call could not run at all
// (invalid pair, ErrBusy, unreadable source root) or was abandoned between
// entries because ctx was cancelled; the report is returned in every case.
func (s *Synchronizer) Synchronize(ctx context.Context, p Pair) (*Report, error) {
	return s.run(ctx, p, false)
}

// Plan classifies every entry like Synchronize would without writing
// anything. It does not take the pair lock.
func (s *Synchronizer) Plan(ctx context.Context, p Pair) (*Report, error) {
	return s.run(ctx, p, true)
}

func (s *Synchronizer) run(ctx context.Context, p Pair, dryRun bool) (*Report, error) {
	defer logging.Timer("synchronize " + p.label())()

	report := &Report{
		Tree:    p.label(),
		Source:  p.Source,
		Dest:    p.Dest,
		DryRun:  dryRun,
		Started: time.Now(),
	}
	finish := func(err error) (*Report, error) {
		report.Finished = time.Now()
		return report, err
	}

	log := s.logger.With(logging.Tree(report.Tree))

	if err := p.validate(); err != nil {
		return finish(fmt.Errorf("%w: source %q, dest %q", err, p.Source, p.Dest))
	}

	if !dryRun {
		release, err := s.acquire(p)
		if err != nil {
			log.Warn("synchronize rejected", logging.Err(err))
			return finish(err)
		}
		defer release()
	}

	ignore, _ := newMatcher(s.opts.Ignore)

	names, err := listSource(p.Source, ignore)
	if err != nil {
		log.Error("failed to read source tree", logging.Path(p.Source), logging.Err(err))
		return finish(classify("read source", p.Source, err))
	}

	log.Debug("starting synchronize",
		logging.Count(len(names)),
		slog.Bool("dry_run", dryRun),
	)
	s.observer.SyncStarted(report.Tree, len(names))

	var destErr error
	if !dryRun {
		if err := os.MkdirAll(p.Dest, 0o755); err != nil {
			destErr = classify("create destination", p.Dest, err)
			log.Error("failed to create destination tree", logging.Path(p.Dest), logging.Err(err))
		} else if err := prepareWorkDir(p.Dest); err != nil {
			destErr = classify("create work directory", workDir(p.Dest), err)
			log.Error("failed to create work directory", logging.Path(p.Dest), logging.Err(err))
		} else {
			defer cleanupWorkDir(p.Dest)
		}
	}

	items := make([]Item, len(names))
	done := make([]bool, len(names))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, name := range names {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			item := Item{Name: name, Action: ActionFailed, Err: destErr}
			if destErr == nil {
				item = s.syncEntry(ctx, p, name, ignore, dryRun)
			}
			items[i] = item
			done[i] = true
			s.observer.EntryFinished(report.Tree, item)
			return nil
		})
	}
	_ = g.Wait()

	for i, item := range items {
		if !done[i] {
			report.Incomplete = true
			continue
		}
		report.Items = append(report.Items, item)
	}

	report.Finished = time.Now()
	s.observer.SyncFinished(report)

	log.Info("synchronize finished",
		slog.Int("added", len(report.Added())),
		slog.Int("replaced", len(report.Replaced())),
		slog.Int("unchanged", len(report.Unchanged())),
		slog.Int("failed", len(report.Failed())),
		slog.Bool("dry_run", dryRun),
		logging.Duration(report.Elapsed()),
	)

	if report.Incomplete {
		return report, fmt.Errorf("synchronize %s abandoned after %d of %d entries: %w",
			report.Tree, len(report.Items), len(names), context.Cause(ctx))
	}
	return report, nil
}

// listSource returns the top-level source names in directory order.
func listSource(root string, ignore *matcher) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name() == workDirName || ignore.match(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// syncEntry reconciles one top-level entry. It never returns an error; any
// failure is recorded on the item and the destination is left as it was.
func (s *Synchronizer) syncEntry(ctx context.Context, p Pair, name string, ignore *matcher, dryRun bool) Item {
	start := time.Now()
	item := Item{Name: name}
	src := filepath.Join(p.Source, name)
	dst := filepath.Join(p.Dest, name)

	finish := func(action Action, err error) Item {
		item.Action = action
		item.Err = err
		item.Duration = time.Since(start)
		attrs := []any{
			logging.Tree(p.label()),
			logging.Entry(name),
			logging.Action(string(action)),
		}
		if err != nil {
			s.logger.Warn("entry failed", append(attrs, logging.Err(err))...)
		} else {
			s.logger.Debug("entry processed", attrs...)
		}
		return item
	}

	info, err := os.Lstat(src)
	if err != nil {
		return finish(ActionFailed, classify("stat source", src, err))
	}
	item.Type = entryTypeOf(info)

	if !dryRun {
		if err := s.recoverEntry(p.Dest, name); err != nil {
			return finish(ActionFailed, classify("recover", dst, err))
		}
	}

	_, err = os.Lstat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if dryRun {
			return finish(ActionAdded, nil)
		}
		staged, err := s.stage(p, name, ignore, &item)
		if err != nil {
			return finish(ActionFailed, err)
		}
		if err := s.install(ctx, staged, dst); err != nil {
			_ = removeExisting(staged)
			return finish(ActionFailed, classify("install", dst, err))
		}
		return finish(ActionAdded, nil)

	case err != nil:
		return finish(ActionFailed, classify("stat destination", dst, err))
	}

	same, err := s.unchanged(p, name, ignore)
	if err != nil {
		return finish(ActionFailed, err)
	}
	if same {
		return finish(ActionUnchanged, nil)
	}
	if dryRun {
		return finish(ActionReplaced, nil)
	}

	staged, err := s.stage(p, name, ignore, &item)
	if err != nil {
		return finish(ActionFailed, err)
	}
	if err := s.swap(ctx, p.Dest, name, staged); err != nil {
		_ = removeExisting(staged)
		return finish(ActionFailed, classify("swap", dst, err))
	}
	return finish(ActionReplaced, nil)
}

// stage copies the source entry to a fresh hidden sibling in the
// destination tree. A partial stage is removed before returning an error.
func (s *Synchronizer) stage(p Pair, name string, ignore *matcher, item *Item) (string, error) {
	staged := siblingPath(p.Dest, name, stageMarker)
	c := &copier{root: p.Source, ignore: ignore, copyFile: s.copyFile}
	err := c.copyEntry(filepath.Join(p.Source, name), staged)
	item.Bytes = c.written
	if err != nil {
		if rerr := removeExisting(staged); rerr != nil {
			s.logger.Warn("failed to remove partial stage", logging.Path(staged), logging.Err(rerr))
		}
		return "", classify("stage", filepath.Join(p.Dest, name), err)
	}
	return staged, nil
}

// unchanged compares source and destination fingerprints. Failing to read
// the destination counts as a difference; failing to read the source is an
// error.
func (s *Synchronizer) unchanged(p Pair, name string, ignore *matcher) (bool, error) {
	src := filepath.Join(p.Source, name)
	dst := filepath.Join(p.Dest, name)

	srcFP, err := takeFingerprint(p.Source, src, s.opts.Compare, ignore)
	if err != nil {
		return false, classify("fingerprint source", src, err)
	}
	dstFP, err := takeFingerprint(p.Dest, dst, s.opts.Compare, ignore)
	if err != nil {
		s.logger.Debug("destination fingerprint failed, replacing",
			logging.Entry(name),
			logging.Err(err),
		)
		return false, nil
	}
	return srcFP.equal(dstFP), nil
}
