package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/auth"
	"github.com/colonyops/taskdesk/internal/core/config"
	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/pkg/iojson"
)

// UserCmd implements the taskdesk user command group.
type UserCmd struct {
	flags *Flags
	app   *desk.App

	in         desk.UserInput
	issueToken bool
}

// NewUserCmd creates a new user command.
func NewUserCmd(flags *Flags, app *desk.App) *UserCmd {
	return &UserCmd{flags: flags, app: app}
}

// Register adds the user command to the application.
func (cmd *UserCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "user",
		Usage: "Manage users",
		Description: `User commands manage the directory. Only directors may create, edit or
block users; blocking is a soft delete.

Examples:
  taskdesk user bootstrap --name "Grace" --email grace@example.com --token
  taskdesk user create --name "Ada" --email ada@example.com --role employee --department Engineering
  taskdesk user block <id>`,
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List users as JSON lines",
				Action:  cmd.runList,
			},
			{
				Name:      "me",
				Usage:     "Show the acting user",
				UsageText: "taskdesk user me",
				Action:    cmd.runMe,
			},
			{
				Name:      "bootstrap",
				Usage:     "Create the first director in an empty local database",
				UsageText: "taskdesk user bootstrap --name <name> --email <email> [--token]",
				Flags: append(cmd.identityFlags(true),
					&cli.BoolFlag{Name: "token", Usage: "also print an API token for the new director", Destination: &cmd.issueToken},
				),
				Action: cmd.runBootstrap,
			},
			{
				Name:      "create",
				Usage:     "Create a user",
				UsageText: "taskdesk user create --name <name> --email <email> --role <role> [--department <name>]",
				Flags:     cmd.userFlags(true),
				Action:    cmd.runCreate,
			},
			{
				Name:      "edit",
				Usage:     "Replace a user's name, email, role and department",
				UsageText: "taskdesk user edit <id> --name <name> --email <email> --role <role> [--department <name>]",
				Flags:     cmd.userFlags(true),
				Action:    cmd.runEdit,
			},
			{
				Name:      "block",
				Usage:     "Block a user",
				UsageText: "taskdesk user block <id>",
				Action:    cmd.runBlock,
			},
		},
	})

	return app
}

func (cmd *UserCmd) identityFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: required, Destination: &cmd.in.Name},
		&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: required, Destination: &cmd.in.Email},
		&cli.StringFlag{Name: "department", Aliases: []string{"d"}, Usage: "department name (optional for directors)", Destination: &cmd.in.Department},
	}
}

func (cmd *UserCmd) userFlags(required bool) []cli.Flag {
	return append(cmd.identityFlags(required),
		&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "director, hod or employee", Required: required, Destination: &cmd.in.Role},
	)
}

func (cmd *UserCmd) runList(ctx context.Context, c *cli.Command) error {
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	users, err := be.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if err := iojson.WriteLine(c.Root().Writer, u); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *UserCmd) runMe(ctx context.Context, c *cli.Command) error {
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	u, err := be.Me(ctx)
	if err != nil {
		return err
	}
	return iojson.WriteLine(c.Root().Writer, u)
}

func (cmd *UserCmd) runBootstrap(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Config.Client.Remote() {
		return fmt.Errorf("bootstrap only runs against the local database; unset client.base_url")
	}

	u, err := cmd.app.Directory.Bootstrap(ctx, cmd.in)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	out := map[string]any{"user": u}
	if cmd.issueToken {
		srv := cmd.flags.Config.Server
		if len(srv.TokenSecret) < config.MinTokenSecretLength {
			return fmt.Errorf("server.token_secret is not configured; user %s was created", u.ID)
		}
		tok, exp, err := auth.NewTokens(srv.TokenSecret, srv.TokenTTL).Issue(u.ID, string(u.Role))
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		out["token"] = tok
		out["expiresAt"] = exp
	}
	return iojson.WriteLine(c.Root().Writer, out)
}

func (cmd *UserCmd) runCreate(ctx context.Context, c *cli.Command) error {
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	u, err := be.CreateUser(ctx, cmd.in)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, u)
}

func (cmd *UserCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk user edit <id> ...")
	if err != nil {
		return err
	}
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	u, err := be.UpdateUser(ctx, id, cmd.in)
	if err != nil {
		return fmt.Errorf("edit user: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, u)
}

func (cmd *UserCmd) runBlock(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk user block <id>")
	if err != nil {
		return err
	}
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}
	u, err := be.BlockUser(ctx, id)
	if err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, u)
}
