package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sa6mwa/procrun/procfile"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the Procfile and list its entries in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := procfile.Load(opts.procfile)
			if err != nil {
				return err
			}
			if pf.Len() == 0 {
				return fmt.Errorf("%s: no entries", opts.procfile)
			}
			opts.logger.Info("procfile loaded", "path", opts.procfile, "entries", pf.Len())
			fmt.Fprintln(cmd.OutOrStdout(), pf.String())
			return nil
		},
	}
}

func newSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <command>...",
		Short: "Add an entry or replace its command, then save the Procfile",
		Long: `Add an entry or replace its command, then save the Procfile.

The command words are joined with single spaces. Quote the command to keep
placeholders away from your shell, and put -- before it when it contains
flags:

  procrun set -- web 'bundle exec rails server -p $PORT'

The Procfile is rewritten with one "name: command" line per entry in
order; comments and blank lines are not kept.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf := procfile.New()
			if fileExists(opts.procfile) {
				var err error
				if pf, err = procfile.Load(opts.procfile); err != nil {
					return err
				}
			}
			if err := pf.Set(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			if err := pf.Save(opts.procfile); err != nil {
				return err
			}
			opts.logger.Info("entry saved", "path", opts.procfile, "entry", args[0])
			return nil
		},
	}
}

func newRmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove an entry and save the Procfile",
		Long: `Remove an entry and save the Procfile.

The Procfile is rewritten with one "name: command" line per entry in
order; comments and blank lines are not kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := procfile.Load(opts.procfile)
			if err != nil {
				return err
			}
			if !pf.Delete(args[0]) {
				return fmt.Errorf("%s: no entry named %q", opts.procfile, args[0])
			}
			if err := pf.Save(""); err != nil {
				return err
			}
			opts.logger.Info("entry removed", "path", opts.procfile, "entry", args[0])
			return nil
		},
	}
}
