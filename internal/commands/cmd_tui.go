package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/styles"
	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *desk.App

	filter  string
	from    string
	to      string
	theme   string
	refresh time.Duration
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *desk.App) *TuiCmd {
	return &TuiCmd{
		flags:   flags,
		app:     app,
		filter:  string(daterange.FilterToday),
		theme:   styles.DefaultTheme,
		refresh: tui.DefaultRefreshInterval,
	}
}

// Flags returns the TUI-specific flags.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "filter",
			Usage:       "initial activity filter",
			Value:       string(daterange.FilterToday),
			Destination: &cmd.filter,
		},
		&cli.StringFlag{Name: "from", Usage: "custom range start", Destination: &cmd.from},
		&cli.StringFlag{Name: "to", Usage: "custom range end", Destination: &cmd.to},
		&cli.StringFlag{
			Name:        "theme",
			Usage:       "color theme",
			Value:       styles.DefaultTheme,
			Sources:     cli.EnvVars("TASKDESK_THEME"),
			Destination: &cmd.theme,
		},
		&cli.DurationFlag{
			Name:        "refresh",
			Usage:       "auto-reload interval, negative to disable",
			Value:       tui.DefaultRefreshInterval,
			Destination: &cmd.refresh,
		},
	}
}

// Register adds the tui command to the application.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive activity feed (default command)",
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the activity feed needs a terminal; use 'taskdesk activity' instead")
	}

	p, ok := styles.GetPalette(cmd.theme)
	if !ok {
		return fmt.Errorf("unknown theme %q: must be one of %v", cmd.theme, styles.ThemeNames())
	}
	styles.SetTheme(p)

	filter, err := daterange.ParseFilter(cmd.filter)
	if err != nil {
		return err
	}
	var custom daterange.Custom
	if custom.From, err = api.ParseTime(cmd.from, time.Local); err != nil {
		return err
	}
	if custom.To, err = api.ParseTime(cmd.to, time.Local); err != nil {
		return err
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	// Fail before entering the alt screen when the actor is unusable.
	if _, err := be.Me(ctx); err != nil {
		return err
	}

	load := func(ctx context.Context, f daterange.Filter, c daterange.Custom) ([]activity.Entry, error) {
		return be.Activity(ctx, f, c)
	}

	return tui.Run(ctx, load, tui.Options{
		Filter:  filter,
		Custom:  custom,
		Refresh: cmd.refresh,
	})
}
