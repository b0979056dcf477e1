package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sa6mwa/procrun"
	"github.com/sa6mwa/procrun/envfile"
	"github.com/sa6mwa/procrun/procfile"
)

type job struct {
	proc   *procrun.Process
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
}

// prepare binds the Procfile entry called name to the environment overlay
// and tags its log records with a fresh run_id.
func (o *options) prepare(cmd *cobra.Command, name string) (*job, error) {
	pf, err := procfile.Load(o.procfile)
	if err != nil {
		return nil, err
	}
	entry, ok := pf.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: no entry named %q", o.procfile, name)
	}
	env, err := o.environment()
	if err != nil {
		return nil, err
	}
	log := o.logger.With("entry", name, "run_id", uuid.NewString())

	p := procrun.New(entry.Command, env)
	p.Stderr = cmd.ErrOrStderr()
	p.Logger = log

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx, err = o.withPolicy(ctx); err != nil {
		return nil, err
	}
	cancel := context.CancelFunc(func() {})
	if o.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
	}
	return &job{proc: p, ctx: ctx, cancel: cancel, log: log}, nil
}

func (o *options) environment() (map[string]string, error) {
	files, err := envfile.LoadAll(o.envFiles...)
	if err != nil {
		return nil, err
	}
	flags, err := parseAssignments(o.env)
	if err != nil {
		return nil, err
	}
	env := procrun.Merge(o.config.Env, files, flags)
	if o.root != "" {
		env[procrun.CwdKey] = o.root
	}
	return env, nil
}

func (o *options) withPolicy(ctx context.Context) (context.Context, error) {
	if o.policyFile == "" {
		return ctx, nil
	}
	f, err := os.Open(o.policyFile)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	defer f.Close()
	ctx, err = procrun.WithRuleCatchError(procrun.WithPolicy(ctx, procrun.DENY), procrun.ALLOW, f)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", o.policyFile, err)
	}
	return ctx, nil
}

func newExpandCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <name>",
		Short: "Print the command of an entry with placeholders substituted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := opts.prepare(cmd, args[0])
			if err != nil {
				return err
			}
			defer j.cancel()
			fmt.Fprintln(cmd.OutOrStdout(), j.proc.Expand(nil))
			return nil
		},
	}
}

func newDigestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "digest <name>",
		Short: "Print the sha256sum line a --policy file needs to allow an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := opts.prepare(cmd, args[0])
			if err != nil {
				return err
			}
			defer j.cancel()
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", procrun.CommandDigest(j.proc.Expand(nil)), args[0])
			return nil
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Run an entry and print its captured output",
		Long: `Run an entry through sh -c, wait for it and print its standard output.
procrun exits with the exit status of the command. The procrun process
itself is left untouched: no environment variable is set and the working
directory is not changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := opts.prepare(cmd, args[0])
			if err != nil {
				return err
			}
			defer j.cancel()
			res, err := j.proc.RunResult(j.ctx, nil)
			if _, werr := io.WriteString(cmd.OutOrStdout(), res.Stdout); werr != nil && err == nil {
				err = werr
			}
			if err != nil {
				return err
			}
			j.log.Info("command finished", "exit_code", res.ExitCode)
			if res.ExitCode != 0 {
				return &ExitCodeError{Code: res.ExitCode}
			}
			return nil
		},
	}
}

func newExecCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <name>",
		Short: "Install the overlay into the environment, run an entry and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := opts.prepare(cmd, args[0])
			if err != nil {
				return err
			}
			defer j.cancel()
			out, err := j.proc.Exec(j.ctx, nil)
			if _, werr := io.WriteString(cmd.OutOrStdout(), out); werr != nil && err == nil {
				err = werr
			}
			return err
		},
	}
}

func newStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start <name>",
		Short: "Replace procrun with the command of an entry",
		Long: `Replace the procrun process with sh -c <command>. The command keeps
procrun's PID, standard streams and signals. --timeout does not apply.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := opts.prepare(cmd, args[0])
			if err != nil {
				return err
			}
			defer j.cancel()
			return j.proc.Handoff(j.ctx, nil)
		},
	}
}
