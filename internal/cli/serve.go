package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOpts) *cobra.Command {
	var (
		addr string
		opts = server.Options{Hold: 5 * time.Second, Loop: true}
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream layout generation to browsers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			opts.Rate = cfg.Frame.Rate
			srv, err := server.New(pipelineFactory(cfg, logger), opts, logger)
			if err != nil {
				return err
			}

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			runErr := make(chan error, 1)
			go func() {
				runErr <- srv.Run(ctx)
				cancel()
			}()

			go func() {
				<-ctx.Done()
				shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
				defer done()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			logger.Info("listening", "addr", addr, "seed", cfg.Seed, "rooms", cfg.Rooms)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "listen on %s", addr)
			}
			cancel()
			return <-runErr
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "listen address")
	f.DurationVar(&opts.Hold, "hold", opts.Hold, "how long a finished layout stays up before the next")
	f.BoolVar(&opts.Loop, "loop", opts.Loop, "keep generating new layouts")

	return cmd
}
