package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/pkg/iojson"
)

// ActivityCmd implements the taskdesk activity command.
type ActivityCmd struct {
	flags *Flags
	app   *desk.App

	filter string
	from   string
	to     string
	asJSON bool
}

// NewActivityCmd creates a new activity command.
func NewActivityCmd(flags *Flags, app *desk.App) *ActivityCmd {
	return &ActivityCmd{flags: flags, app: app}
}

// Register adds the activity command to the application.
func (cmd *ActivityCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "activity",
		Usage:     "Show recent activity reconstructed from task, user and department records",
		UsageText: "taskdesk activity [--filter <name>] [--from <date> --to <date>] [--json]",
		Description: `Prints the activity feed for the acting user, newest first. Employees only
see their own department.

Filters: today, yesterday, tomorrow, week, month, year, all, custom.
The custom filter needs both --from and --to.

Examples:
  taskdesk activity --filter week
  taskdesk activity --filter custom --from 2026-10-01 --to 2026-10-15 --json`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Value: string(daterange.FilterWeek), Destination: &cmd.filter},
			&cli.StringFlag{Name: "from", Usage: "custom range start", Destination: &cmd.from},
			&cli.StringFlag{Name: "to", Usage: "custom range end", Destination: &cmd.to},
			&cli.BoolFlag{Name: "json", Usage: "print entries as JSON lines", Destination: &cmd.asJSON},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ActivityCmd) run(ctx context.Context, c *cli.Command) error {
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

	entries, err := be.Activity(ctx, filter, custom)
	if err != nil {
		return fmt.Errorf("load activity: %w", err)
	}

	w := c.Root().Writer
	now := time.Now()
	for _, e := range entries {
		if cmd.asJSON {
			err = iojson.WriteLine(w, e)
		} else {
			_, err = fmt.Fprintln(w, ActivityLine(e, now))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
