package treesync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/klauern/pdparty/internal/logging"
)

// workDirName is the reserved directory below each destination tree that
// holds stage copies and parked old entries. Recovery lists only this
// directory, so user entries are never enumerated.
const workDirName = ".pdsync"

// Markers between the entry name and the uuid of a work directory item.
const (
	stageMarker = ".stage-"
	oldMarker   = ".old-"
)

func workDir(dest string) string {
	return filepath.Join(dest, workDirName)
}

func siblingPath(dest, name, marker string) string {
	return filepath.Join(workDir(dest), name+marker+uuid.NewString())
}

// parseWorkName splits a work directory item into its entry name and marker.
func parseWorkName(base string) (name, marker string, ok bool) {
	const idLen = 36
	if len(base) <= idLen {
		return "", "", false
	}
	if _, err := uuid.Parse(base[len(base)-idLen:]); err != nil {
		return "", "", false
	}
	rest := base[:len(base)-idLen]
	for _, m := range []string{stageMarker, oldMarker} {
		if n, found := strings.CutSuffix(rest, m); found && n != "" {
			return n, m, true
		}
	}
	return "", "", false
}

// prepareWorkDir creates the work directory for a destination tree.
func prepareWorkDir(dest string) error {
	return os.MkdirAll(workDir(dest), 0o700)
}

// cleanupWorkDir removes the work directory once nothing is left in it.
func cleanupWorkDir(dest string) {
	_ = os.Remove(workDir(dest))
}

// recoverEntry repairs leftovers of an interrupted run for one entry: stale
// stage copies are removed, and a parked old copy is moved back when the
// entry itself is missing.
func (s *Synchronizer) recoverEntry(dest, name string) error {
	items, err := os.ReadDir(workDir(dest))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	target := filepath.Join(dest, name)
	var missing, checked bool

	for _, it := range items {
		n, marker, ok := parseWorkName(it.Name())
		if !ok || n != name {
			continue
		}
		m := filepath.Join(workDir(dest), it.Name())
		if marker == stageMarker {
			if err := removeExisting(m); err != nil {
				return err
			}
			continue
		}

		if !checked {
			_, statErr := os.Lstat(target)
			missing = errors.Is(statErr, fs.ErrNotExist)
			checked = true
		}
		if missing {
			if err := s.rename(m, target); err != nil {
				return fmt.Errorf("failed to restore %q: %w", target, err)
			}
			missing = false
			s.logger.Warn("restored entry from interrupted swap",
				logging.Entry(name),
				logging.Path(target),
			)
			continue
		}
		if err := removeExisting(m); err != nil {
			return err
		}
	}
	return nil
}

// install moves a staged copy into a free destination slot.
func (s *Synchronizer) install(ctx context.Context, staged, target string) error {
	return withRetry(ctx, func() error { return s.rename(staged, target) })
}

// swap replaces target with staged so that target is always either the old
// or the new entry. On success the old contents are discarded.
func (s *Synchronizer) swap(ctx context.Context, dest, name, staged string) error {
	target := filepath.Join(dest, name)

	if s.exchange != nil {
		err := withRetry(ctx, func() error { return s.exchange(staged, target) })
		if err == nil {
			// staged now holds the previous contents.
			if err := removeExisting(staged); err != nil {
				s.logger.Warn("failed to discard old contents", logging.Path(staged), logging.Err(err))
			}
			return nil
		}
		if !exchangeUnsupported(err) {
			return err
		}
		s.logger.Debug("atomic exchange unsupported, using rename pair", logging.Path(target))
	}

	old := siblingPath(dest, name, oldMarker)
	if err := withRetry(ctx, func() error { return s.rename(target, old) }); err != nil {
		return err
	}
	if err := withRetry(ctx, func() error { return s.rename(staged, target) }); err != nil {
		if rerr := s.rename(old, target); rerr != nil {
			return errors.Join(err, fmt.Errorf("failed to restore %q: %w", target, rerr))
		}
		return err
	}
	if err := removeExisting(old); err != nil {
		// The next run removes it during recovery.
		s.logger.Warn("failed to discard old contents", logging.Path(old), logging.Err(err))
	}
	return nil
}
