package commandrunner_test

import (
	"bytes"
	"errors"
	"os/exec"
	"testing"

	"github.com/sa6mwa/procrun/adapters/commandrunner"
)

func TestDefaultRunnerWritesToConfiguredStdout(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "echo streamed")
	var buf bytes.Buffer
	cmd.Stdout = &buf

	if err := commandrunner.Default.Run(cmd); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if buf.String() != "streamed\n" {
		t.Fatalf("unexpected streamed output: %q", buf.String())
	}
}

func TestDefaultRunnerHonoursDir(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command("/bin/sh", "-c", "pwd -P")
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf

	if err := (commandrunner.DefaultRunner{}).Run(cmd); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected pwd output")
	}
}

func TestDefaultRunnerReportsExitStatus(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 3")
	err := commandrunner.Default.Run(cmd)
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError, got %v", err)
	}
	if exitErr.ExitCode() != 3 {
		t.Fatalf("unexpected exit code: %d", exitErr.ExitCode())
	}
}
