package treesync

import (
	"errors"
	"path/filepath"
)

// Well-known tree names shipped with the app bundle.
const (
	TreeLib     = "lib"
	TreeSamples = "samples"
	TreeTests   = "tests"
)

// DefaultTrees lists the bundled trees in the order they are synchronized at launch.
var DefaultTrees = []string{TreeLib, TreeSamples, TreeTests}

// ErrInvalidPair is returned for a Pair with empty or identical roots.
var ErrInvalidPair = errors.New("invalid tree pair")

// Pair couples a read-only resource tree with its user-writable counterpart.
type Pair struct {
	// Name identifies the pair in reports and logs.
	Name string
	// Source is the bundled, read-only tree root.
	Source string
	// Dest is the user-writable tree root.
	Dest string
}

// NewPair builds the pair for name below the resource and user roots,
// using the same relative subpath on both sides.
func NewPair(name, resourceRoot, userRoot string) Pair {
	return Pair{
		Name:   name,
		Source: filepath.Join(resourceRoot, name),
		Dest:   filepath.Join(userRoot, name),
	}
}

func (p Pair) validate() error {
	if p.Source == "" || p.Dest == "" {
		return ErrInvalidPair
	}
	if filepath.Clean(p.Source) == filepath.Clean(p.Dest) {
		return ErrInvalidPair
	}
	return nil
}

// key identifies the pair for locking, independent of path spelling.
func (p Pair) key() string {
	src, err := filepath.Abs(p.Source)
	if err != nil {
		src = filepath.Clean(p.Source)
	}
	dst, err := filepath.Abs(p.Dest)
	if err != nil {
		dst = filepath.Clean(p.Dest)
	}
	return src + "\x00" + dst
}

func (p Pair) label() string {
	if p.Name != "" {
		return p.Name
	}
	return filepath.Base(p.Dest)
}
