//go:build !unix

package procrun

import (
	"context"
	"errors"
)

// Handoff is only supported on unix platforms.
func (p *Process) Handoff(ctx context.Context, override map[string]string) error {
	return &ExecError{Command: p.Command, Err: errors.New("process replacement is not supported on this platform")}
}
