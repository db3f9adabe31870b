package cli

import (
	"context"
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/samdwyer/dungeonlayout/internal/config"
	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/layout"
	"github.com/samdwyer/dungeonlayout/internal/sampling"
)

var version = "dev"

// SetVersion sets the version displayed by --version.
func SetVersion(v string) {
	version = v
}

// rootOpts holds the flags shared by every command.
type rootOpts struct {
	verbose    bool
	configPath string
	seed       int64
	rooms      int
	logFile    string

	logOut io.Closer
}

// closeLog closes the --log-file handle, if one was opened.
func (o *rootOpts) closeLog() error {
	if o.logOut == nil {
		return nil
	}
	err := o.logOut.Close()
	o.logOut = nil
	return err
}

// Execute runs the CLI with the given arguments.
func Execute(ctx context.Context, args []string) (err error) {
	root, opts := newRootCmd(os.Stderr)
	defer func() {
		if cerr := opts.closeLog(); err == nil && cerr != nil {
			err = errors.Wrap(errors.ErrCodeInternal, cerr, "close log file")
		}
	}()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stderr io.Writer) (*cobra.Command, *rootOpts) {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:           "dungeonlayout",
		Short:         "Procedural dungeon room layout",
		Long:          `dungeonlayout scatters rooms, merges and separates overlaps, classifies the result into major and minor rooms and connects them with a Delaunay triangulation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			w := stderr
			if opts.logFile != "" {
				f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "open log file")
				}
				opts.logOut = f
				w = f
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(w, level)))
			return nil
		},
	}
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML config file overlaying the defaults")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed (0 picks one from the clock)")
	flags.IntVar(&opts.rooms, "rooms", 0, "number of rooms to scatter")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(newViewCmd(opts))
	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newServeCmd(opts))

	return root, opts
}

// loadConfig reads the config file and environment, then applies flags that
// were set explicitly. A zero seed is replaced with a clock-derived one so
// that the run can be reproduced from its logs.
func loadConfig(cmd *cobra.Command, opts *rootOpts) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("rooms") {
		cfg.Rooms = opts.rooms
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

// pipelineFactory returns a constructor that builds a pipeline on each call,
// starting at cfg.Seed and moving to the next seed every time.
func pipelineFactory(cfg config.Config, logger *charmlog.Logger) func() (*layout.Pipeline, error) {
	next := cfg.Seed
	return func() (*layout.Pipeline, error) {
		c := cfg
		c.Seed = next
		next++
		return layout.New(c, sampling.New(c.Seed), layout.WithLogger(logger))
	}
}
