//go:build windows

package executor

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup configures the child process for Windows. Process groups
// do not work the same way as on Unix; a new group is still requested so
// console signals do not propagate to the parent.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killProcessGroup terminates the individual process. Windows has no
// negative-PID group kill; child interpreters are terminated directly.
func killProcessGroup(pid int, _ syscall.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	return nil
}
