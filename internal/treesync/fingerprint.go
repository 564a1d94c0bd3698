package treesync

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// CompareMode selects how entries are compared for the unchanged short-circuit.
type CompareMode string

const (
	// CompareContent compares type, permissions, size, symlink targets and a
	// SHA-256 of every file in the entry.
	CompareContent CompareMode = "content"
	// CompareMetadata trusts modification times instead of hashing: two files
	// with equal size, permissions and nanosecond mtime count as the same.
	CompareMetadata CompareMode = "metadata"
)

// IsValid reports whether m is a known mode.
func (m CompareMode) IsValid() bool {
	return m == CompareMetadata || m == CompareContent
}

// signature describes one path inside an entry.
type signature struct {
	typ   EntryType
	perm  fs.FileMode
	size  int64
	mtime time.Time
	link  string
	sum   [sha256.Size]byte
}

// fingerprint maps slash-separated paths relative to the entry to signatures.
type fingerprint map[string]signature

func (f fingerprint) equal(other fingerprint) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		if o, ok := other[k]; !ok || o != v {
			return false
		}
	}
	return true
}

// takeFingerprint walks the entry at path (below treeRoot) and records a
// signature for each file, directory and symlink not excluded by ignore.
func takeFingerprint(treeRoot, path string, mode CompareMode, ignore *matcher) (fingerprint, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	fp := make(fingerprint)
	if entryTypeOf(info) != EntryDir {
		sig, err := sign(path, info, mode)
		if err != nil {
			return nil, err
		}
		fp["."] = sig
		return fp, nil
	}

	var mu sync.Mutex
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if ignore.skip(treeRoot, p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		sig, err := sign(p, info, mode)
		if err != nil {
			return err
		}

		mu.Lock()
		fp[filepath.ToSlash(rel)] = sig
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint %q: %w", path, err)
	}
	return fp, nil
}

func sign(path string, info fs.FileInfo, mode CompareMode) (signature, error) {
	sig := signature{typ: entryTypeOf(info)}
	switch sig.typ {
	case EntrySymlink:
		target, err := os.Readlink(path)
		if err != nil {
			return sig, err
		}
		sig.link = target
	case EntryDir:
		// Directory modes are normalized on copy; only presence matters.
	default:
		sig.perm = info.Mode().Perm()
		sig.size = info.Size()
		if mode == CompareMetadata {
			// Destinations that truncate timestamps never match, so the
			// entry is replaced on every run.
			sig.mtime = info.ModTime().UTC()
			break
		}
		if !info.Mode().IsRegular() {
			return sig, fmt.Errorf("%q: %w", path, errUnsupportedType)
		}
		sum, err := hashFile(path)
		if err != nil {
			return sig, err
		}
		sig.sum = sum
	}
	return sig, nil
}

func hashFile(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	// #nosec G304 - path comes from walking a managed tree
	f, err := os.Open(path)
	if err != nil {
		return sum, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
