//go:build windows

package probe

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// connectex reports refusals as WSAECONNREFUSED, which is not the same
// errno as syscall.ECONNREFUSED on Windows.
var refusedErrnos = []syscall.Errno{syscall.ECONNREFUSED, windows.WSAECONNREFUSED}
