//go:build !windows

package launcher

import "syscall"

// detachAttr puts the child in its own session so it survives the parent
// exiting and ignores the parent's controlling terminal.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
