package procrun

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/sa6mwa/procrun/adapters/commandcapture"
	"github.com/sa6mwa/procrun/port"
)

// RunCommand executes cmd using the supplied runner and returns everything
// the command wrote to stdout together with its exit code. cmd.Stdout must
// be unset; it is pointed at a capture buffer for the duration of the call
// and put back afterwards. A non-zero exit status is reported through the
// exit code, not the error; the error is non-nil only when the command could
// not be run to completion.
func RunCommand(runner port.CommandRunner, cmd *exec.Cmd) ([]byte, int, error) {
	if runner == nil {
		return nil, -1, fmt.Errorf("nil command runner")
	}
	capture, err := newStdoutCapture(cmd)
	if err != nil {
		return nil, -1, err
	}
	err = runner.Run(cmd)
	out := capture.Finish()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return out, exitCodeFrom(err, nil), err
	}
	return out, exitCodeFrom(err, cmd.ProcessState), nil
}

func newStdoutCapture(cmd *exec.Cmd) (port.CommandCapture, error) {
	if cmd == nil {
		return nil, fmt.Errorf("nil command")
	}
	if cmd.Stdout != nil {
		return nil, fmt.Errorf("stdout capture requested with configured stdout")
	}
	capture := commandcapture.New()
	buf := &bytes.Buffer{}
	buf.Grow(128)
	cmd.Stdout = buf
	capture.Enable(buf, func() {
		cmd.Stdout = nil
	})
	return capture, nil
}

func exitCodeFrom(waitErr error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode()
	}
	return -1
}
