package treesync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// acquire takes the pair lock. The in-process table rejects a second caller
// in this process; the flock file (when a lock directory is configured)
// rejects callers in other processes. Both yield ErrBusy.
func (s *Synchronizer) acquire(p Pair) (func(), error) {
	key := p.key()

	s.mu.Lock()
	if _, busy := s.inFlight[key]; busy {
		s.mu.Unlock()
		return nil, &Error{Kind: KindBusy, Op: "synchronize", Path: p.Dest, Err: ErrBusy}
	}
	s.inFlight[key] = struct{}{}
	s.mu.Unlock()

	releaseLocal := func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}

	if s.opts.LockDir == "" {
		return releaseLocal, nil
	}

	if err := os.MkdirAll(s.opts.LockDir, 0o750); err != nil {
		releaseLocal()
		return nil, classify("create lock directory", s.opts.LockDir, err)
	}

	fl := flock.New(lockFilePath(s.opts.LockDir, p))
	locked, err := fl.TryLock()
	if err != nil {
		releaseLocal()
		return nil, classify("lock", fl.Path(), err)
	}
	if !locked {
		releaseLocal()
		return nil, &Error{Kind: KindBusy, Op: "synchronize", Path: p.Dest, Err: fmt.Errorf("%w: locked by another process", ErrBusy)}
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("failed to release sync lock", "path", fl.Path(), "error", err)
		}
		releaseLocal()
	}, nil
}

// lockFilePath derives a stable lock file name from the pair's resolved roots.
func lockFilePath(dir string, p Pair) string {
	sum := sha256.Sum256([]byte(p.key()))
	return filepath.Join(dir, p.label()+"-"+hex.EncodeToString(sum[:8])+".lock")
}
