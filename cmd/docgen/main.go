// Command docgen writes the taskdesk CLI reference as markdown. The default
// output is docs/cli-reference.md; pass a path to override it.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskdesk/internal/commands"
	"github.com/colonyops/taskdesk/internal/desk"
)

func main() {
	flags := &commands.Flags{}
	app := &desk.App{}

	// Keep in sync with the root flags in main.go.
	root := &cli.Command{
		Name:      "taskdesk",
		Usage:     "Departmental task tracking with approvals and an activity feed",
		UsageText: "taskdesk [global options] command [command options]",
		Description: `Directors assign tasks to heads of department and employees, assignees
report progress, and completed work moves through HOD and director approval.

Run 'taskdesk' with no arguments to open the interactive activity feed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("TASKDESK_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file (defaults to <data-dir>/taskdesk.log, '-' for stdout)",
				Sources: cli.EnvVars("TASKDESK_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("TASKDESK_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "path to data directory",
				Sources: cli.EnvVars("TASKDESK_DATA_DIR"),
				Value:   commands.DefaultDataDir(),
			},
			&cli.StringFlag{
				Name:    "as",
				Usage:   "acting user ID or email for local commands",
				Sources: cli.EnvVars("TASKDESK_AS"),
			},
			&cli.BoolFlag{
				Name:  "recover-db",
				Usage: "back up a corrupt database and start with an empty one",
			},
		},
	}

	root = commands.NewTaskCmd(flags, app).Register(root)
	root = commands.NewUserCmd(flags, app).Register(root)
	root = commands.NewDeptCmd(flags, app).Register(root)
	root = commands.NewActivityCmd(flags, app).Register(root)
	root = commands.NewTokenCmd(flags, app).Register(root)
	root = commands.NewServeCmd(flags, app).Register(root)
	root = commands.NewConfigCmd(flags).Register(root)
	root = commands.NewTuiCmd(flags, app).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join("docs", "cli-reference.md")
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", filepath.Dir(outPath), err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
