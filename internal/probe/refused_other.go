//go:build !windows

package probe

import "syscall"

var refusedErrnos = []syscall.Errno{syscall.ECONNREFUSED}
