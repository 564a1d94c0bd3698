//go:build windows

package cli

import "os"

// Windows has no user signals; the runtime stays in the foreground.
func notifyLifecycle(chan<- os.Signal) {}

func isBackgroundSignal(os.Signal) bool { return false }
