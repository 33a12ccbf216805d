//go:build linux

package bridge

import (
	"os/exec"
	"syscall"
)

// setPlatformSpecificAttrs asks the kernel to kill the engine if the host dies
// while a call is in flight.
func setPlatformSpecificAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGKILL,
	}
}
