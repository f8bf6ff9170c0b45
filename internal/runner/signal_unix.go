//go:build !windows

package runner

import (
	"os"
	"syscall"
)

// sendInterrupt re-raises SIGINT so signal.NotifyContext cancels the scan
// even though raw mode swallowed the Ctrl+C keypress.
func sendInterrupt() {
	_ = syscall.Kill(os.Getpid(), syscall.SIGINT)
}
