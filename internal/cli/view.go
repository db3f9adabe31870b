package cli

import (
	"io"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/samdwyer/dungeonlayout/internal/app"
	"github.com/samdwyer/dungeonlayout/internal/ui"
)

func newViewCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Animate layout generation in the terminal",
		Long:  "Animate layout generation in the terminal. Keys: space pauses, r regenerates, g toggles the graph, q or Esc quits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if opts.logFile == "" {
				logger = charmlog.New(io.Discard)
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			screen, err := ui.NewScreen()
			if err != nil {
				return err
			}
			defer screen.Close()

			a, err := app.New(screen, pipelineFactory(cfg, logger), cfg.Frame.Rate, logger)
			if err != nil {
				return err
			}
			logger.Info("viewer started", "seed", cfg.Seed, "rooms", cfg.Rooms, "rate", cfg.Frame.Rate)
			return a.Run(cmd.Context())
		},
	}
}
