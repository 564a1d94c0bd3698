package treesync

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// matcher excludes paths matching any doublestar pattern. Patterns are
// matched against slash-separated paths relative to the tree root, so
// "**/.DS_Store" matches both ".DS_Store" and "examples/.DS_Store".
type matcher struct {
	patterns []string
}

func newMatcher(patterns []string) (*matcher, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return &matcher{patterns: patterns}, nil
}

// match reports whether the slash-separated relative path is ignored.
func (m *matcher) match(rel string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// skip reports whether path below root is ignored.
func (m *matcher) skip(root, path string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return m.match(filepath.ToSlash(rel))
}
