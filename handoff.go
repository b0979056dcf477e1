//go:build unix

package procrun

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Handoff replaces the current process image with `sh -c <expanded>`. The
// effective environment is installed into the process environment and the
// process working directory is changed to the resolved directory before the
// execve(2). On success Handoff does not return; any returned error means
// the process is still running procrun, possibly with its environment and
// working directory already changed.
//
// ctx is consulted for the execution policy only.
func (p *Process) Handoff(ctx context.Context, override map[string]string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	inv, err := p.prepare(ctx, Merge(p.Env, override))
	if err != nil {
		return err
	}
	if err := setenv(inv.env); err != nil {
		return &ExecError{Command: inv.command, Err: fmt.Errorf("setenv: %w", err)}
	}
	if err := os.Chdir(inv.dir); err != nil {
		return &PathError{Path: inv.dir, Err: err}
	}
	p.logger().Debug("handing off", "command", inv.command, "dir", inv.dir)
	if err := unix.Exec(Shell, []string{"sh", "-c", inv.command}, os.Environ()); err != nil {
		return &ExecError{Command: inv.command, Err: err}
	}
	return nil
}
