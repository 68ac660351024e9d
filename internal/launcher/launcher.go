// Package launcher starts configured applications detached from idlewipe,
// so the launched process outlives the CLI invocation.
package launcher

import (
	"errors"
	"fmt"
	"os/exec"
)

// Start launches cmdline detached from the current process and returns the
// child PID. The child keeps running after idlewipe exits; no pipe or
// terminal is shared with it.
func Start(cmdline []string) (int, error) {
	if len(cmdline) == 0 {
		return 0, errors.New("empty command")
	}

	cmd := exec.Command(cmdline[0], cmdline[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachAttr()

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %q: %w", cmdline[0], err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release process %d: %w", pid, err)
	}

	return pid, nil
}
