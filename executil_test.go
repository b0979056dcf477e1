package procrun

import (
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/sa6mwa/procrun/adapters/commandrunner"
	"github.com/sa6mwa/procrun/adapters/mockrunner"
)

func TestRunCommandCapturesStdout(t *testing.T) {
	runner := mockrunner.New(func(cmd *exec.Cmd) error {
		if _, err := cmd.Stdout.Write([]byte("stdout\n")); err != nil {
			t.Fatalf("write stdout: %v", err)
		}
		return nil
	})

	cmd := exec.Command("/bin/true")
	out, code, err := RunCommand(runner, cmd)
	if err != nil {
		t.Fatalf("RunCommand returned error: %v", err)
	}
	if string(out) != "stdout\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	if code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if cmd.Stdout != nil {
		t.Fatalf("stdout not restored after capture")
	}
}

func TestRunCommandKeepsStderrSeparate(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "echo stdout; echo stderr 1>&2")
	cmd.Stderr = io.Discard
	out, _, err := RunCommand(commandrunner.Default, cmd)
	if err != nil {
		t.Fatalf("RunCommand returned error: %v", err)
	}
	if string(out) != "stdout\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunCommandExitCode(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "echo before; exit 7")
	out, code, err := RunCommand(commandrunner.Default, cmd)
	if err != nil {
		t.Fatalf("non-zero exit should not be an error, got %v", err)
	}
	if code != 7 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if string(out) != "before\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunCommandConfiguredStdout(t *testing.T) {
	cmd := exec.Command("/bin/true")
	cmd.Stdout = io.Discard
	if _, _, err := RunCommand(commandrunner.Default, cmd); err == nil {
		t.Fatalf("expected error when stdout already configured")
	}
}

func TestRunCommandNilRunner(t *testing.T) {
	if _, _, err := RunCommand(nil, exec.Command("/bin/true")); err == nil {
		t.Fatalf("expected error for nil runner")
	}
}

func TestRunCommandSpawnError(t *testing.T) {
	cmd := exec.Command("/nonexistent/procrun-test-binary")
	_, code, err := RunCommand(commandrunner.Default, cmd)
	if err == nil {
		t.Fatalf("expected spawn error")
	}
	if code != -1 {
		t.Fatalf("unexpected exit code for spawn failure: %d", code)
	}
}

func TestExitCodeFrom(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 7")
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected non-zero exit error")
	}
	if code := exitCodeFrom(err, nil); code != 7 {
		t.Fatalf("unexpected exit code from error: %d", code)
	}

	cmd2 := exec.Command("/bin/sh", "-c", "exit 0")
	if err := cmd2.Run(); err != nil {
		t.Fatalf("unexpected error running cmd2: %v", err)
	}
	if code := exitCodeFrom(nil, cmd2.ProcessState); code != 0 {
		t.Fatalf("unexpected exit code from process state: %d", code)
	}

	if code := exitCodeFrom(errors.New("boom"), nil); code != -1 {
		t.Fatalf("expected -1 for unknown error, got %d", code)
	}
}
