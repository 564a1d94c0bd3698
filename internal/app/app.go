// Package app coordinates the application lifecycle: it synchronizes the
// bundled resource trees, owns the subsystem registry and forwards
// foreground/background transitions to it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/klauern/pdparty/internal/config"
	"github.com/klauern/pdparty/internal/glue"
	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/subsystem/midi"
	"github.com/klauern/pdparty/internal/subsystem/osc"
	"github.com/klauern/pdparty/internal/subsystem/patch"
	"github.com/klauern/pdparty/internal/subsystem/scene"
	"github.com/klauern/pdparty/internal/treesync"
)

var (
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("app already started")
	// ErrNotStarted is returned by lifecycle calls before Start.
	ErrNotStarted = errors.New("app not started")
	// ErrTerminated is returned by lifecycle calls after Terminate.
	ErrTerminated = errors.New("app terminated")
	// ErrUnknownTree is returned for a tree name outside the configured set.
	ErrUnknownTree = errors.New("unknown tree")
)

// Options configures an App.
type Options struct {
	// Config is required.
	Config *config.Config

	// Logger defaults to logging.Default().
	Logger *slog.Logger

	// SyncObserver receives synchronizer progress (progress bars, metrics).
	SyncObserver treesync.Observer

	// StateObserver receives registry state transitions.
	StateObserver registry.StateObserver

	// Factories replaces the built-in factory for a variant.
	Factories map[registry.Variant]registry.Factory
}

// App is the lifecycle coordinator.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *registry.Registry
	syncers  map[string]*treesync.Synchronizer

	view      *glue.Visibility
	navigator *glue.NowPlaying
	launcher  *glue.BrowserLauncher

	mu           sync.Mutex
	started      bool
	terminated   bool
	backgrounded bool
	reports      map[string]*treesync.Report
	syncErrs     map[string]error
	bgCancel     context.CancelFunc
	bgDone       chan struct{}
}

// New builds the coordinator and registers the subsystem factories. No
// filesystem work happens until Start.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("app: config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{
		cfg:      opts.Config,
		logger:   logger,
		syncers:  make(map[string]*treesync.Synchronizer),
		view:     &glue.Visibility{},
		reports:  make(map[string]*treesync.Report),
		syncErrs: make(map[string]error),
	}

	for _, name := range a.cfg.Sync.Trees {
		s, err := a.newSynchronizer(name, opts.SyncObserver)
		if err != nil {
			return nil, err
		}
		a.syncers[name] = s
	}

	regOpts := []registry.Option{registry.WithLogger(logger)}
	if opts.StateObserver != nil {
		regOpts = append(regOpts, registry.WithObserver(opts.StateObserver))
	}
	a.registry = registry.New(regOpts...)

	factories := a.defaultFactories()
	for v, f := range opts.Factories {
		factories[v] = f
	}
	for _, v := range registry.DefaultOrder {
		if err := a.registry.Register(v, factories[v]); err != nil {
			return nil, err
		}
	}

	scenes := sceneLookup{a}
	a.navigator = &glue.NowPlaying{Scenes: scenes, View: a.view}
	a.launcher = glue.NewBrowserLauncher(scenes)

	return a, nil
}

func (a *App) newSynchronizer(name string, obs treesync.Observer) (*treesync.Synchronizer, error) {
	topts, err := a.cfg.Tree(name)
	if err != nil {
		return nil, err
	}
	s, err := treesync.New(treesync.Options{
		Workers:  topts.Workers,
		Compare:  treesync.CompareMode(topts.Compare),
		Ignore:   topts.Ignore,
		LockDir:  a.cfg.LockDir(),
		Observer: obs,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("tree %s: %w", name, err)
	}
	return s, nil
}

func (a *App) defaultFactories() map[registry.Variant]registry.Factory {
	userRoot := a.cfg.UserRoot()
	sub := a.cfg.Subsystems
	return map[registry.Variant]registry.Factory{
		registry.Patch: patch.Factory(filepath.Join(userRoot, treesync.TreeLib), a.logger),
		registry.MIDI:  midi.Factory(midi.Options{Inputs: sub.MIDI.Inputs, Outputs: sub.MIDI.Outputs}),
		registry.OSC:   osc.Factory(sub.OSC.Addr, a.logger),
		registry.Scene: scene.Factory(userRoot),
	}
}

// Start runs the launch sequence: synchronize lib, initialize every
// subsystem, then synchronize the remaining trees in the background. A
// failed lib sync or subsystem construction is logged and tolerated.
func (a *App) Start(ctx context.Context) (*registry.InitResult, error) {
	a.mu.Lock()
	switch {
	case a.terminated:
		a.mu.Unlock()
		return nil, ErrTerminated
	case a.started:
		a.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	a.started = true
	a.mu.Unlock()

	defer logging.Timer("app.start")()

	// Subsystems may read lib during construction.
	if _, ok := a.syncers[treesync.TreeLib]; ok {
		_, _ = a.Sync(ctx, treesync.TreeLib, false)
	}

	order, err := a.cfg.Variants()
	if err != nil {
		return nil, err
	}
	res, err := a.registry.InitializeAll(ctx, order)
	if err != nil {
		return nil, err
	}

	if name := a.cfg.App.Scene; name != "" {
		if m, ok := a.SceneManager(); ok {
			if err := m.Open(name); err != nil {
				a.logger.Warn("failed to open startup scene", logging.Path(name), logging.Err(err))
			}
		}
	}

	rest := slices.DeleteFunc(slices.Clone(a.cfg.Sync.Trees), func(n string) bool {
		return n == treesync.TreeLib
	})
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	// Terminate may have run while subsystems were being constructed.
	a.mu.Lock()
	if a.terminated {
		cancel()
		close(done)
		a.bgDone = done
		a.mu.Unlock()
		return res, ErrTerminated
	}
	a.bgCancel = cancel
	a.bgDone = done
	a.view.Set(true)
	a.mu.Unlock()

	go func() {
		defer close(done)
		for _, name := range rest {
			if bgCtx.Err() != nil {
				return
			}
			_, _ = a.Sync(bgCtx, name, false)
		}
	}()

	return res, nil
}

// Sync synchronizes (or plans, when dryRun is set) one configured tree and
// records the report.
func (a *App) Sync(ctx context.Context, name string, dryRun bool) (*treesync.Report, error) {
	s, ok := a.syncers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTree, name)
	}

	pair := a.cfg.Pair(name)
	var (
		report *treesync.Report
		err    error
	)
	if dryRun {
		report, err = s.Plan(ctx, pair)
	} else {
		report, err = s.Synchronize(ctx, pair)
	}

	if err != nil {
		a.logger.Warn("tree synchronization incomplete", logging.Tree(name), logging.Err(err))
	}
	if !dryRun {
		a.mu.Lock()
		a.reports[name] = report
		a.syncErrs[name] = err
		a.mu.Unlock()
	}
	return report, err
}

// Wait blocks until background synchronization has finished or ctx is done.
func (a *App) Wait(ctx context.Context) error {
	a.mu.Lock()
	done := a.bgDone
	a.mu.Unlock()
	if done == nil {
		return ErrNotStarted
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reports returns the recorded synchronization reports in tree order.
func (a *App) Reports() []*treesync.Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*treesync.Report, 0, len(a.reports))
	for _, name := range a.cfg.Sync.Trees {
		if r, ok := a.reports[name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// SyncErr returns the error of the last synchronize call for a tree.
func (a *App) SyncErr(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.syncErrs[name]
}

// EnterBackground suspends subsystems unless the app runs in the background.
func (a *App) EnterBackground(ctx context.Context) error {
	if err := a.checkRunning(); err != nil {
		return err
	}
	a.view.Set(false)

	if a.cfg.App.RunsInBackground {
		a.logger.Debug("running in background, subsystems stay active")
		return nil
	}

	a.mu.Lock()
	a.backgrounded = true
	a.mu.Unlock()
	return a.registry.SuspendAll(ctx)
}

// EnterForeground resumes subsystems suspended by EnterBackground.
func (a *App) EnterForeground(ctx context.Context) error {
	if err := a.checkRunning(); err != nil {
		return err
	}
	a.view.Set(true)

	a.mu.Lock()
	wasBackgrounded := a.backgrounded
	a.backgrounded = false
	a.mu.Unlock()

	if !wasBackgrounded {
		return nil
	}
	return a.registry.ResumeAll(ctx)
}

func (a *App) checkRunning() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.terminated:
		return ErrTerminated
	case !a.started:
		return ErrNotStarted
	}
	return nil
}

// Terminate stops background synchronization and tears down every
// subsystem. It is safe to call more than once.
func (a *App) Terminate(ctx context.Context) error {
	a.mu.Lock()
	if a.terminated {
		a.mu.Unlock()
		return nil
	}
	a.terminated = true
	cancel, done := a.bgCancel, a.bgDone
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			a.logger.Warn("background sync did not stop before shutdown", logging.Err(ctx.Err()))
		}
	}

	a.view.Set(false)
	return a.registry.TeardownAll(ctx)
}

// Registry returns the subsystem registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// PatchEngine returns the patch engine if it is live.
func (a *App) PatchEngine() (*patch.Engine, bool) {
	return registry.Lookup[*patch.Engine](a.registry, registry.Patch)
}

// MIDI returns the MIDI port if it is live.
func (a *App) MIDI() (*midi.Port, bool) {
	return registry.Lookup[*midi.Port](a.registry, registry.MIDI)
}

// OSC returns the OSC endpoint if it is live.
func (a *App) OSC() (*osc.Endpoint, bool) {
	return registry.Lookup[*osc.Endpoint](a.registry, registry.OSC)
}

// SceneManager returns the scene manager if it is live.
func (a *App) SceneManager() (*scene.Manager, bool) {
	return registry.Lookup[*scene.Manager](a.registry, registry.Scene)
}

// View reports whether the primary view is visible.
func (a *App) View() glue.ViewState { return a.view }

// Navigator returns the now-playing navigator.
func (a *App) Navigator() glue.Navigator { return a.navigator }

// Launcher returns the content launcher, resolving against the active scene.
func (a *App) Launcher() glue.ContentLauncher { return a.launcher }

// LockScreenDisabled reports the lock-screen policy flag.
func (a *App) LockScreenDisabled() bool { return a.cfg.App.LockScreenDisabled }

// RunsInBackground reports the background policy flag.
func (a *App) RunsInBackground() bool { return a.cfg.App.RunsInBackground }

// sceneLookup resolves the active scene folder through the registry, so
// glue never holds the scene manager itself.
type sceneLookup struct{ a *App }

func (s sceneLookup) Folder() (string, bool) {
	m, ok := s.a.SceneManager()
	if !ok {
		return "", false
	}
	return m.Folder()
}
