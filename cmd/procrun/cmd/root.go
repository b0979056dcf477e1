package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExitCodeError carries a child's non-zero exit status out of Execute so
// main can exit with the same code.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type options struct {
	configFile string
	procfile   string
	root       string
	env        []string
	envFiles   []string
	policyFile string
	timeout    time.Duration
	logLevel   string
	logFormat  string

	logger *slog.Logger
	config fileConfig
}

// Execute runs the procrun command line with os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "procrun",
		Short: "Run Procfile entries through a POSIX shell",
		Long: `procrun reads a Procfile, expands the command of one entry against an
environment overlay and runs it with sh -c.

The overlay is built from, in increasing precedence: the env table of the
config file, --env-file files (.toml, .yaml/.yml or dotenv) and --env
KEY=VALUE flags. --root sets the reserved cwd key, the working directory of
the command.

Every flag overrides the config file. The log level is taken from
--log-level, then $PROCRUN_LOG_LEVEL, then log_level in the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	addGlobalFlags(root.PersistentFlags(), opts)

	root.AddCommand(
		newCheckCmd(opts),
		newSetCmd(opts),
		newRmCmd(opts),
		newExpandCmd(opts),
		newDigestCmd(opts),
		newRunCmd(opts),
		newExecCmd(opts),
		newStartCmd(opts),
	)
	return root
}

func addGlobalFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVarP(&opts.configFile, "config", "c", "", "Config file (default: ./"+defaultConfigFile+" if present)")
	fs.StringVarP(&opts.procfile, "procfile", "f", "Procfile", "Procfile to read")
	fs.StringVarP(&opts.root, "root", "d", "", "Working directory of the command (sets the cwd key)")
	fs.StringArrayVarP(&opts.env, "env", "e", nil, "Add KEY=VALUE to the environment overlay (can be repeated)")
	fs.StringArrayVar(&opts.envFiles, "env-file", nil, "Load environment overlay from file (can be repeated)")
	fs.StringVar(&opts.policyFile, "policy", "", "Only run commands whose digest is listed in this sha256sum file")
	fs.DurationVarP(&opts.timeout, "timeout", "t", 0, "Kill the command after this duration (0 = no limit)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error (env "+logLevelEnv+")")
	fs.StringVar(&opts.logFormat, "log-format", "auto", "Log format: auto, text, json")
}

// logLevelEnv overrides the config file log_level but not --log-level.
const logLevelEnv = "PROCRUN_LOG_LEVEL"

// setup loads the config file, lets it fill in every flag the user did not
// set, and builds the logger.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(o.configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	o.config = cfg
	if err := o.applyConfig(cmd.Flags()); err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
	if err != nil {
		return err
	}
	o.logger = logger
	return nil
}

func (o *options) applyConfig(fs *pflag.FlagSet) error {
	cfg := o.config
	if cfg.Procfile != "" && !fs.Changed("procfile") {
		o.procfile = cfg.Procfile
	}
	if cfg.Root != "" && !fs.Changed("root") {
		o.root = cfg.Root
	}
	if cfg.Policy != "" && !fs.Changed("policy") {
		o.policyFile = cfg.Policy
	}
	if !fs.Changed("log-level") {
		if cfg.LogLevel != "" {
			o.logLevel = cfg.LogLevel
		}
		if v := os.Getenv(logLevelEnv); v != "" {
			o.logLevel = v
		}
	}
	if cfg.Timeout != "" && !fs.Changed("timeout") {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		o.timeout = d
	}
	o.envFiles = append(append([]string(nil), cfg.EnvFiles...), o.envFiles...)
	return nil
}

func parseAssignments(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --env %q: want KEY=VALUE", pair)
		}
		env[k] = v
	}
	return env, nil
}
