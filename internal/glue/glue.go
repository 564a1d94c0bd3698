// Package glue defines the narrow interfaces the UI layer consumes, plus
// small desktop implementations used by the CLI.
package glue

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/pkg/browser"

	"github.com/klauern/pdparty/internal/logging"
)

// ErrNoScene is returned when a request needs an active scene and none is
// open.
var ErrNoScene = errors.New("no active scene")

// ViewState answers whether the primary view is on screen.
type ViewState interface {
	PrimaryViewVisible() bool
}

// Navigator brings the now-playing view forward.
type Navigator interface {
	ShowNowPlaying(ctx context.Context) error
}

// ContentLauncher opens external content with a title.
type ContentLauncher interface {
	Launch(ctx context.Context, rawURL, title string) error
}

// SceneFolder resolves the active scene's resource folder.
type SceneFolder interface {
	Folder() (string, bool)
}

// Visibility is a ViewState backed by a flag.
type Visibility struct {
	visible atomic.Bool
}

// PrimaryViewVisible reports the last value passed to Set.
func (v *Visibility) PrimaryViewVisible() bool { return v.visible.Load() }

// Set records whether the primary view is visible.
func (v *Visibility) Set(visible bool) { v.visible.Store(visible) }

// NowPlaying is a Navigator that requires an open scene and marks the
// primary view hidden while the now-playing view is shown.
type NowPlaying struct {
	Scenes SceneFolder
	View   *Visibility
}

// ShowNowPlaying implements Navigator.
func (n *NowPlaying) ShowNowPlaying(ctx context.Context) error {
	folder, ok := sceneFolder(n.Scenes)
	if !ok {
		return ErrNoScene
	}
	if n.View != nil {
		n.View.Set(false)
	}
	logging.WithContext(ctx).Info("showing now playing", logging.Path(folder))
	return nil
}

// BrowserLauncher is a ContentLauncher that opens URLs in the system
// browser. Relative URLs are resolved against the active scene folder.
type BrowserLauncher struct {
	Scenes SceneFolder

	// open defaults to browser.OpenURL.
	open func(string) error
}

// NewBrowserLauncher creates a launcher resolving against scenes.
func NewBrowserLauncher(scenes SceneFolder) *BrowserLauncher {
	return &BrowserLauncher{Scenes: scenes, open: browser.OpenURL}
}

// Launch implements ContentLauncher.
func (l *BrowserLauncher) Launch(ctx context.Context, rawURL, title string) error {
	target, err := l.Resolve(rawURL)
	if err != nil {
		return err
	}

	logging.WithContext(ctx).Info("launching content",
		logging.Operation("launch"),
		logging.Path(target),
		"title", title,
	)

	open := l.open
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

// Resolve returns the URL that Launch would open. URLs with a scheme are
// returned unchanged; anything else is treated as a path relative to the
// active scene folder and returned as a file URL.
func (l *BrowserLauncher) Resolve(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty url")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Scheme != "" {
		return u.String(), nil
	}

	p := filepath.FromSlash(u.Path)
	if !filepath.IsAbs(p) {
		folder, ok := sceneFolder(l.Scenes)
		if !ok {
			return "", fmt.Errorf("resolve %q: %w", rawURL, ErrNoScene)
		}
		p = filepath.Join(folder, p)
	}

	resolved := url.URL{Scheme: "file", Path: filepath.ToSlash(p), RawQuery: u.RawQuery, Fragment: u.Fragment}
	return resolved.String(), nil
}

func sceneFolder(s SceneFolder) (string, bool) {
	if s == nil {
		return "", false
	}
	return s.Folder()
}
