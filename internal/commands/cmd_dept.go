package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/pkg/iojson"
)

// DeptCmd implements the taskdesk dept command group.
type DeptCmd struct {
	flags *Flags
	app   *desk.App

	in desk.DepartmentInput
}

// NewDeptCmd creates a new dept command.
func NewDeptCmd(flags *Flags, app *desk.App) *DeptCmd {
	return &DeptCmd{flags: flags, app: app}
}

// Register adds the dept command to the application.
func (cmd *DeptCmd) Register(app *cli.Command) *cli.Command {
	fields := []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Destination: &cmd.in.Name},
		&cli.StringFlag{Name: "code", Aliases: []string{"c"}, Usage: "short code, stored upper case", Destination: &cmd.in.Code},
		&cli.StringFlag{Name: "description", Destination: &cmd.in.Description},
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:    "dept",
		Aliases: []string{"department"},
		Usage:   "Manage departments",
		Description: `Department commands. Only directors may create, edit or block departments.

Examples:
  taskdesk dept create --name Engineering --code eng
  taskdesk dept list`,
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List departments as JSON lines",
				Action:  cmd.runList,
			},
			{
				Name:      "create",
				Usage:     "Create a department",
				UsageText: "taskdesk dept create --name <name> [--code <code>] [--description <text>]",
				Flags:     fields,
				Action:    cmd.runCreate,
			},
			{
				Name:      "edit",
				Usage:     "Replace a department's name, code and description",
				UsageText: "taskdesk dept edit <id> --name <name> [--code <code>] [--description <text>]",
				Flags:     fields,
				Action:    cmd.runEdit,
			},
			{
				Name:      "block",
				Usage:     "Block a department",
				UsageText: "taskdesk dept block <id>",
				Action:    cmd.runBlock,
			},
		},
	})

	return app
}

func (cmd *DeptCmd) runList(ctx context.Context, c *cli.Command) error {
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	depts, err := be.ListDepartments(ctx)
	if err != nil {
		return fmt.Errorf("list departments: %w", err)
	}
	for _, d := range depts {
		if err := iojson.WriteLine(c.Root().Writer, d); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *DeptCmd) runCreate(ctx context.Context, c *cli.Command) error {
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	d, err := be.CreateDepartment(ctx, cmd.in)
	if err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, d)
}

func (cmd *DeptCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk dept edit <id> ...")
	if err != nil {
		return err
	}
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	d, err := be.UpdateDepartment(ctx, id, cmd.in)
	if err != nil {
		return fmt.Errorf("edit department: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, d)
}

func (cmd *DeptCmd) runBlock(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk dept block <id>")
	if err != nil {
		return err
	}
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	d, err := be.BlockDepartment(ctx, id)
	if err != nil {
		return fmt.Errorf("block department: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, d)
}
