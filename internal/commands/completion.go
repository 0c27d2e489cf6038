package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/desk"
)

// TaskIDCompleter completes positional task IDs with "id:title" lines.
// Tasks that are cancelled or fully approved are left out. While a flag is
// being typed it defers to the default flag completion.
func TaskIDCompleter(flags *Flags, app *desk.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args().Slice(); len(args) > 0 && strings.HasPrefix(args[len(args)-1], "-") {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		be, err := newBackend(flags, app)
		if err != nil {
			return
		}
		tasks, err := be.ListTasks(ctx, task.ListFilter{})
		if err != nil {
			return
		}

		for _, t := range tasks {
			if t.Status != task.StatusCancelled && !t.DirectorApproved {
				_, _ = fmt.Fprintf(cmd.Root().Writer, "%s:%s\n", t.ID, t.Title)
			}
		}
	}
}
