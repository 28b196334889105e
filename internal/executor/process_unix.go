//go:build !windows

package executor

import (
	"fmt"
	"os/exec"
	"syscall"
)

// setProcessGroup configures the child to run in its own process group, so
// the timeout kill reaches the interpreter and everything it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcessGroup signals the entire process group (negative PID). If the
// group signal fails, it falls back to signalling the individual process.
func killProcessGroup(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(-pid, sig); err != nil {
		if err2 := syscall.Kill(pid, sig); err2 != nil {
			return fmt.Errorf("failed to kill process group -%d: %v, also failed to kill process %d: %v", pid, err, pid, err2)
		}
	}
	return nil
}
