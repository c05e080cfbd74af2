//go:build unix

package probe

import (
	"os/exec"
	"syscall"
)

// setProcGroup starts the shell in its own process group so the server it
// spawns is killed with it.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
