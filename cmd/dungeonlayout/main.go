// Package main is the entry point for dungeonlayout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/samdwyer/dungeonlayout/internal/cli"
	dlerrors "github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env for local development. It may set DUNGEONLAYOUT_SEED,
	// DUNGEONLAYOUT_ROOMS or the Honeycomb key.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn(".env file not loaded", "err", err)
	}
	if err := telemetry.ConfigureEnv(os.LookupEnv, os.Setenv); err != nil {
		log.Warn("telemetry environment", "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx, version)
		if err != nil {
			log.Warn("telemetry setup failed, running without tracing", "err", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Error("shutting down telemetry", "err", err)
				}
			}()
		}
	}

	cli.SetVersion(version)
	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			cancel()
			os.Exit(130) // standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, dlerrors.UserMessage(err))
		cancel()
		os.Exit(1)
	}
}
