// Package procrun runs the commands of a Procfile entry through a POSIX
// shell. A Process expands its command template against an environment
// overlay, resolves a working directory and executes the result in one of
// two modes:
//
//   - Run captures stdout and leaves process-wide state alone. This is the
//     mode a supervisor should use.
//   - Exec first installs the effective environment into the process-wide
//     environment with os.Setenv. The change is permanent and accumulates
//     across calls.
//
// Handoff goes one step further and replaces the current process image.
//
// The working directory is handed to the child through exec.Cmd.Dir, so Run
// never changes the caller's working directory and may be called from
// several goroutines. Exec and Handoff mutate the process environment and
// must be serialized by the caller. Process groups are not managed: a child
// that forks and exits may leave orphans behind.
//
//	p := procrun.New("echo $GREETING", map[string]string{"GREETING": "hello"})
//	out, err := p.Run(ctx, nil)
package procrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/sa6mwa/procrun/adapters/commandrunner"
	"github.com/sa6mwa/procrun/port"
)

// Shell is the interpreter every command is passed to as `sh -c <command>`.
const Shell = "/bin/sh"

// waitDelay bounds how long a cancelled run waits for grandchildren that
// still hold the stdout pipe.
const waitDelay = 2 * time.Second

// Process is a single command template bound to a base environment. It
// carries no state between runs.
type Process struct {
	// Command is the raw command template, usually copied from a Procfile
	// entry.
	Command string
	// Dir overrides the working directory. When empty the cwd key of the
	// effective environment is used, then the current directory.
	Dir string
	// Env is the base environment overlay.
	Env map[string]string

	// Runner spawns the shell. Nil means commandrunner.Default.
	Runner port.CommandRunner
	// Stderr receives the child's standard error. Nil means os.Stderr.
	Stderr io.Writer
	// Logger receives debug records for every spawn. Nil discards them.
	Logger *slog.Logger
}

// New returns a Process for command with a private copy of env.
func New(command string, env map[string]string) *Process {
	return &Process{
		Command: command,
		Env:     maps.Clone(env),
	}
}

// Expand returns the command with every $KEY of the base environment,
// overlaid by override, substituted. It has no side effects.
func (p *Process) Expand(override map[string]string) string {
	return Expand(p.Command, Merge(p.Env, override))
}

// Cwd resolves the working directory from Dir or the base environment.
func (p *Process) Cwd() (string, error) {
	return p.resolveDir(p.Env)
}

func (p *Process) resolveDir(env map[string]string) (string, error) {
	dir := p.Dir
	if dir == "" {
		dir = env[CwdKey]
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &PathError{Path: dir, Err: err}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &PathError{Path: dir, Err: err}
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", &PathError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return "", &PathError{Path: dir, Err: fmt.Errorf("not a directory")}
	}
	return resolved, nil
}

// Run executes the expanded command in capture mode and returns its
// standard output. The child inherits the host environment plus the
// effective overlay; the host environment itself is not modified. A
// non-zero exit status is not an error, see RunResult.
func (p *Process) Run(ctx context.Context, override map[string]string) (string, error) {
	res, err := p.RunResult(ctx, override)
	return res.Stdout, err
}

// RunResult is Run but also reports the child's exit code.
func (p *Process) RunResult(ctx context.Context, override map[string]string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	inv, err := p.prepare(ctx, Merge(p.Env, override))
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	return p.spawn(ctx, inv, "run")
}

// Exec installs every key of the effective environment into the process
// environment, then runs the command like Run. The environment change is
// never rolled back. Nothing is installed when the working directory cannot
// be resolved or the policy denies the command.
func (p *Process) Exec(ctx context.Context, override map[string]string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	inv, err := p.prepare(ctx, Merge(p.Env, override))
	if err != nil {
		return "", err
	}
	if err := setenv(inv.env); err != nil {
		return "", &ExecError{Command: inv.command, Err: fmt.Errorf("setenv: %w", err)}
	}
	res, err := p.spawn(ctx, inv, "exec")
	return res.Stdout, err
}

// invocation is a command that passed directory resolution and the policy
// check and is ready to be spawned.
type invocation struct {
	env     map[string]string
	dir     string
	command string
}

func (p *Process) prepare(ctx context.Context, env map[string]string) (invocation, error) {
	dir, err := p.resolveDir(env)
	if err != nil {
		return invocation{}, err
	}
	expanded := Expand(p.Command, env)
	if err := CheckPolicy(ctx, expanded); err != nil {
		return invocation{}, err
	}
	return invocation{env: env, dir: dir, command: expanded}, nil
}

func (p *Process) spawn(ctx context.Context, inv invocation, mode string) (Result, error) {
	cmd := exec.CommandContext(ctx, Shell, "-c", inv.command)
	cmd.Dir = inv.dir
	cmd.Env = environ(inv.env)
	cmd.WaitDelay = waitDelay
	cmd.Stderr = p.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	runner := p.Runner
	if runner == nil {
		runner = commandrunner.Default
	}

	log := p.logger()
	log.Debug("spawning command", "mode", mode, "command", inv.command, "dir", inv.dir)
	out, code, err := RunCommand(runner, cmd)
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Debug("command failed", "mode", mode, "command", inv.command, "error", err)
		return Result{ExitCode: code}, &ExecError{Command: inv.command, Err: err}
	}
	if !utf8.Valid(out) {
		return Result{ExitCode: code}, &ExecError{Command: inv.command, Err: errInvalidUTF8}
	}
	log.Debug("command exited", "mode", mode, "command", inv.command, "exit_code", code, "bytes", len(out))
	return Result{ExitCode: code, Stdout: string(out)}, nil
}

func (p *Process) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
