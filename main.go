package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/commands"
	"github.com/colonyops/taskdesk/internal/core/config"
	"github.com/colonyops/taskdesk/internal/core/eventbus"
	"github.com/colonyops/taskdesk/internal/core/logging"
	"github.com/colonyops/taskdesk/internal/data/db"
	"github.com/colonyops/taskdesk/internal/data/stores"
	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// eventBufferSize bounds queued lifecycle events before publishes drop.
const eventBufferSize = 256

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCloser func()
		deskApp   = &desk.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskdesk",
		Usage:     "Departmental task tracking with approvals and an activity feed",
		UsageText: "taskdesk [global options] command [command options]",
		Description: `Directors assign tasks to heads of department and employees, assignees
report progress, and completed work moves through HOD and director approval.

Commands run against the local database, or against an API server when
client.base_url is configured. Run 'taskdesk serve' to host the API.

Run 'taskdesk' with no arguments to open the interactive activity feed.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKDESK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/taskdesk.log, '-' for stdout)",
				Sources:     cli.EnvVars("TASKDESK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKDESK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKDESK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "as",
				Usage:       "acting user ID or email for local commands",
				Sources:     cli.EnvVars("TASKDESK_AS"),
				Destination: &flags.As,
			},
			&cli.BoolFlag{
				Name:        "recover-db",
				Usage:       "back up a corrupt database and start with an empty one",
				Destination: &flags.RecoverDB,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(logutils.Options{
				Level: flags.LogLevel,
				Path:  flags.LogFile,
				Dir:   flags.DataDir,
			})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Open database connection
			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = db.Open(cfg.DataDir, dbOpts)
			if err != nil && stores.IsCorruptionError(err) {
				if !flags.RecoverDB {
					return ctx, fmt.Errorf("open database: %w (rerun with --recover-db to back up %s and start fresh)", err, cfg.DatabaseFile())
				}
				log.Warn().Err(err).Str("path", cfg.DatabaseFile()).Msg("database corrupt, backing up and recreating")
				backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
				if rerr != nil {
					return ctx, fmt.Errorf("recover database: %w", rerr)
				}
				log.Info().Str("backup", backup).Msg("corrupt database moved aside")
				database, err = db.Open(cfg.DataDir, dbOpts)
			}
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Lifecycle events fan out to notifications on a background dispatcher.
			bus := eventbus.New(eventBufferSize)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewNotificationRouter(bus).Register()
			notifyLog := logging.Component("notify")
			bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
				notifyLog.Info().
					Str("recipient", p.Recipient.ID).
					Str("level", string(p.Level)).
					Msg(p.Message)
			})

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*deskApp = *desk.NewApp(cfg, database, bus, logging.Component("desk"))

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, deskApp)

	app = commands.NewTaskCmd(flags, deskApp).Register(app)
	app = commands.NewUserCmd(flags, deskApp).Register(app)
	app = commands.NewDeptCmd(flags, deskApp).Register(app)
	app = commands.NewActivityCmd(flags, deskApp).Register(app)
	app = commands.NewTokenCmd(flags, deskApp).Register(app)
	app = commands.NewServeCmd(flags, deskApp).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)
	app = tuiCmd.Register(app)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'taskdesk --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
