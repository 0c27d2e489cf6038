package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/auth"
	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/internal/profiler"
	"github.com/colonyops/taskdesk/internal/server"
)

// ServeCmd implements the taskdesk serve command.
type ServeCmd struct {
	flags *Flags
	app   *desk.App

	addr         string
	profilerPort int
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *desk.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the HTTP API server",
		UsageText: "taskdesk serve [--addr <host:port>]",
		Description: `Serves the JSON API over the local database. Every write is re-validated
against freshly loaded records, so the server is the authoritative gate for
the task lifecycle.

Requires server.token_secret in the config file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides server.addr)",
				Sources:     cli.EnvVars("TASKDESK_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.IntFlag{
				Name:        "profiler-port",
				Usage:       "serve pprof endpoints on this port (0 disables)",
				Sources:     cli.EnvVars("TASKDESK_PROFILER_PORT"),
				Destination: &cmd.profilerPort,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config
	if cmd.addr != "" {
		cfg.Server.Addr = cmd.addr
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cmd.profilerPort > 0 {
		prof := profiler.New(cmd.profilerPort)
		if err := prof.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := prof.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", prof.Addr())).
			Msg("profiler endpoint available")
	}

	tokens := auth.NewTokens(cfg.Server.TokenSecret, cfg.Server.TokenTTL)
	srv := server.New(cmd.app, tokens, cfg.Server, log.With().Str("component", "server").Logger())

	return srv.Run(ctx)
}
