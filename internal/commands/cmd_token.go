package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/auth"
	"github.com/colonyops/taskdesk/internal/core/config"
	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/pkg/iojson"
)

// TokenCmd implements the taskdesk token command group.
type TokenCmd struct {
	flags *Flags
	app   *desk.App
}

// NewTokenCmd creates a new token command.
func NewTokenCmd(flags *Flags, app *desk.App) *TokenCmd {
	return &TokenCmd{flags: flags, app: app}
}

// Register adds the token command to the application.
func (cmd *TokenCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "token",
		Usage: "Issue API bearer tokens",
		Commands: []*cli.Command{
			{
				Name:      "issue",
				Usage:     "Issue a token for an active user",
				UsageText: "taskdesk token issue <user id|email>",
				Description: `Signs a bearer token with server.token_secret. The token identifies the
user to the API server; role and department are re-read on every request.

Examples:
  taskdesk token issue ada@example.com`,
				Action: cmd.runIssue,
			},
		},
	})

	return app
}

func (cmd *TokenCmd) runIssue(ctx context.Context, c *cli.Command) error {
	ref, err := requireArg(c, "taskdesk token issue <user id|email>")
	if err != nil {
		return err
	}

	srv := cmd.flags.Config.Server
	if len(srv.TokenSecret) < config.MinTokenSecretLength {
		return fmt.Errorf("server.token_secret must be at least %d characters", config.MinTokenSecretLength)
	}

	dir := cmd.app.Directory
	var id string
	if strings.Contains(ref, "@") {
		u, err := dir.FindUserByEmail(ctx, ref)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		id = u.ID
	} else {
		id = ref
	}

	// Actor rejects blocked users.
	u, err := dir.Actor(ctx, id)
	if err != nil {
		return err
	}

	tok, exp, err := auth.NewTokens(srv.TokenSecret, srv.TokenTTL).Issue(u.ID, string(u.Role))
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, map[string]any{
		"userId":    u.ID,
		"token":     tok,
		"expiresAt": exp,
	})
}
