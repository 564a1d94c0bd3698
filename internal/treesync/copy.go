package treesync

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauern/pdparty/internal/logging"
)

// dirWriteBits is OR-ed into copied directory modes so the user tree stays
// writable and removable even when the bundle ships read-only directories.
const dirWriteBits = 0o700

// errUnsupportedType is returned for sockets, devices and named pipes, which
// are never copied or read.
var errUnsupportedType = errors.New("unsupported file type")

// copyFileFunc copies one regular file and returns the bytes written.
type copyFileFunc func(src, dst string, info fs.FileInfo) (int64, error)

// entryTypeOf maps Lstat info to an EntryType.
func entryTypeOf(info fs.FileInfo) EntryType {
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return EntrySymlink
	case info.IsDir():
		return EntryDir
	default:
		return EntryFile
	}
}

// removeExisting removes a file, symlink, or directory at the given path.
// Uses os.Lstat to not follow symlinks, ensuring symlinks are removed as entries.
// Returns nil if the path doesn't exist.
func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove directory %q: %w", path, err)
		}
	} else if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}

	logging.Debug("removed", logging.Path(path), logging.Action(string(entryTypeOf(info))))
	return nil
}

// copyRegular copies a single file from src to dst, preserving permissions
// and modification time.
func copyRegular(src, dst string, info fs.FileInfo) (int64, error) {
	// #nosec G304 - src is inside the bundled resource tree
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	// #nosec G302 G304 - preserving source permissions, dst is a staging path
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create destination %q: %w", dst, err)
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		_ = dstFile.Close()
		return n, fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}
	if err := dstFile.Sync(); err != nil {
		_ = dstFile.Close()
		return n, fmt.Errorf("failed to flush %q: %w", dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close %q: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return n, fmt.Errorf("failed to set times on %q: %w", dst, err)
	}

	return n, nil
}

// copier recursively copies one top-level entry into a staging location.
type copier struct {
	root     string // source tree root, used to compute ignore paths
	ignore   *matcher
	copyFile copyFileFunc
	written  int64
}

// copyEntry copies the entry at src (file, directory or symlink) to dst.
// dst must not exist.
func (c *copier) copyEntry(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("failed to lstat %q: %w", src, err)
	}

	switch entryTypeOf(info) {
	case EntrySymlink:
		return copySymlink(src, dst)
	case EntryDir:
		return c.copyDir(src, dst, info)
	default:
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%q (%s): %w", src, info.Mode().Type(), errUnsupportedType)
		}
		n, err := c.copyFile(src, dst, info)
		c.written += n
		return err
	}
}

// copyDir recursively copies a directory from src to dst.
func (c *copier) copyDir(src, dst string, info fs.FileInfo) error {
	if err := os.Mkdir(dst, 0o700); err != nil {
		return fmt.Errorf("failed to create destination directory %q: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory %q: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		if c.ignore.skip(c.root, srcPath) {
			continue
		}
		if err := c.copyEntry(srcPath, filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	if err := os.Chmod(dst, info.Mode().Perm()|dirWriteBits); err != nil {
		return fmt.Errorf("failed to set mode on %q: %w", dst, err)
	}

	logging.Debug("copied directory", logging.Path(src))
	return nil
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read symlink %q: %w", src, err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("failed to create symlink %q: %w", dst, err)
	}
	return nil
}
