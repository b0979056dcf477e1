package port

import (
	"os/exec"
)

// CommandRunner abstracts command execution so a Process can be pointed at
// a fake in tests without depending on a specific adapter implementation.
// Run must start cmd and block until it exits, honouring cmd.Dir, cmd.Env
// and the configured stdio writers.
type CommandRunner interface {
	Run(cmd *exec.Cmd) error
}
