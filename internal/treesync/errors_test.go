package treesync

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		sentinel error
	}{
		{"not exist", &fs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, KindNotFound, ErrNotFound},
		{"permission", &fs.PathError{Op: "mkdir", Path: "/x", Err: syscall.EACCES}, KindPermission, ErrPermission},
		{"wrapped permission", fmt.Errorf("copy: %w", fs.ErrPermission), KindPermission, ErrPermission},
		{"no space", &fs.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC}, KindIO, ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", "/x", tt.err)
			if KindOf(err) != tt.kind {
				t.Errorf("KindOf() = %v, want %v", KindOf(err), tt.kind)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if !errors.Is(err, tt.err) {
				t.Error("classified error should unwrap to the cause")
			}
		})
	}
}

func TestClassify_KeepsExistingKind(t *testing.T) {
	busy := &Error{Kind: KindBusy, Op: "synchronize", Err: ErrBusy}
	if got := classify("other", "/y", busy); got != busy {
		t.Errorf("classify() rewrapped an already classified error: %v", got)
	}
	if classify("op", "/x", nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf() of a plain error should be 0")
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindIO, Op: "swap", Path: "/docs/lib/examples", Err: syscall.EIO}
	if got := err.Error(); got != `swap "/docs/lib/examples": input/output error` {
		t.Errorf("Error() = %q", got)
	}
	noPath := &Error{Kind: KindBusy, Op: "synchronize", Err: ErrBusy}
	if got := noPath.Error(); got != "synchronize: synchronize already in flight" {
		t.Errorf("Error() = %q", got)
	}
	if errors.Is(err, ErrBusy) {
		t.Error("io error should not match ErrBusy")
	}
}

func TestKind_String(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindIO:         "io",
		KindNotFound:   "not_found",
		KindPermission: "permission",
		KindBusy:       "busy",
		Kind(42):       "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
