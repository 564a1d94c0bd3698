//go:build !windows

package cli

import (
	"os"
	"os/signal"
	"syscall"
)

func notifyLifecycle(c chan<- os.Signal) {
	signal.Notify(c, syscall.SIGUSR1, syscall.SIGUSR2)
}

func isBackgroundSignal(sig os.Signal) bool {
	return sig == syscall.SIGUSR1
}
