//go:build !linux

package bridge

import "os/exec"

// setPlatformSpecificAttrs is a no-op: Pdeathsig is linux-only, and orphaned
// engines elsewhere are left to the host runtime.
func setPlatformSpecificAttrs(cmd *exec.Cmd) {}
