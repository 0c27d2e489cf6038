package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/styles"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/desk"
	"github.com/colonyops/taskdesk/pkg/iojson"
)

// TaskCmd implements the taskdesk task command group.
type TaskCmd struct {
	flags *Flags
	app   *desk.App

	// create flags
	createTitle       string
	createDescription string
	createPriority    string
	createAssignee    string
	createStart       string
	createDue         string

	// list flags
	listStart      string
	listEnd        string
	listDepartment string
	listSearch     string
	listAssignee   string

	showJSON bool

	updateStatus  string
	updateRemarks string

	approveStage string
	reopenReason string
	replyMessage string

	importReader iojson.FileReader[[]desk.ImportItem]
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *desk.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Create, list and progress tasks",
		Description: `Task commands drive the task lifecycle.

Locally the acting user comes from --as; in remote mode it comes from the
configured API token.

Examples:
  taskdesk task list --department 'eng*'
  taskdesk task create --title "Quarterly report" --assignee ada@example.com
  taskdesk task update <id> --status in_progress --remarks "started"
  taskdesk task approve <id> --stage hod`,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.showCmd(),
			cmd.createCmd(),
			cmd.importCmd(),
			cmd.updateCmd(),
			cmd.approveCmd(),
			cmd.reopenCmd(),
			cmd.replyCmd(),
			cmd.deleteCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks as JSON lines",
		UsageText: "taskdesk task list [--start <date>] [--end <date>] [--department <glob>] [--search <text>]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "only tasks created on or after this date", Destination: &cmd.listStart},
			&cli.StringFlag{Name: "end", Usage: "only tasks created on or before this date", Destination: &cmd.listEnd},
			&cli.StringFlag{Name: "department", Aliases: []string{"d"}, Usage: "department name or glob pattern", Destination: &cmd.listDepartment},
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "match title or description", Destination: &cmd.listSearch},
			&cli.StringFlag{Name: "assignee", Usage: "assignee user ID", Destination: &cmd.listAssignee},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a task with its update history",
		UsageText: "taskdesk task show <id> [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the task as JSON", Destination: &cmd.showJSON},
		},
		Action:        cmd.runShow,
		ShellComplete: TaskIDCompleter(cmd.flags, cmd.app),
	}
}

func (cmd *TaskCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a task (directors only)",
		UsageText: "taskdesk task create [--title <title>] [--assignee <id|email>] [--priority <p>] [--due <date>]",
		Description: `Creates a PENDING task for a head of department or employee.

Without --title an interactive form is shown.

Examples:
  taskdesk task create
  taskdesk task create --title "Audit" --assignee ada@example.com --priority high --due 2026-11-30`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "task title", Destination: &cmd.createTitle},
			&cli.StringFlag{Name: "description", Usage: "task description (markdown)", Destination: &cmd.createDescription},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "low, medium or high", Value: "medium", Destination: &cmd.createPriority},
			&cli.StringFlag{Name: "assignee", Aliases: []string{"a"}, Usage: "assignee user ID or email", Destination: &cmd.createAssignee},
			&cli.StringFlag{Name: "start", Usage: "start date (defaults to now)", Destination: &cmd.createStart},
			&cli.StringFlag{Name: "due", Usage: "due date", Destination: &cmd.createDue},
		},
		Action: cmd.runCreate,
	}
}

func (cmd *TaskCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create tasks from a JSON array",
		UsageText: "taskdesk task import [-f tasks.json]",
		Description: `Creates tasks in order from a JSON array, stopping at the first failure.

Each item takes the fields of "task create"; the assignee may be given as
"assignedTo" (user ID) or "assigneeEmail".

Examples:
  taskdesk task import -f tasks.json
  cat tasks.json | taskdesk task import`,
		Flags:  []cli.Flag{cmd.importReader.Flag()},
		Action: cmd.runImport,
	}
}

func (cmd *TaskCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Submit a progress update (assignee only)",
		UsageText: "taskdesk task update <id> --status <status> --remarks <text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "pending, in_progress, completed, blocked or cancelled", Required: true, Destination: &cmd.updateStatus},
			&cli.StringFlag{Name: "remarks", Aliases: []string{"r"}, Usage: "what changed", Required: true, Destination: &cmd.updateRemarks},
		},
		Action:        cmd.runUpdate,
		ShellComplete: TaskIDCompleter(cmd.flags, cmd.app),
	}
}

func (cmd *TaskCmd) approveCmd() *cli.Command {
	return &cli.Command{
		Name:      "approve",
		Usage:     "Grant HOD or director approval on a completed task",
		UsageText: "taskdesk task approve <id> --stage <hod|director>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "stage", Usage: "hod or director", Required: true, Destination: &cmd.approveStage},
		},
		Action:        cmd.runApprove,
		ShellComplete: TaskIDCompleter(cmd.flags, cmd.app),
	}
}

func (cmd *TaskCmd) reopenCmd() *cli.Command {
	return &cli.Command{
		Name:      "reopen",
		Usage:     "Reopen an approved task",
		UsageText: "taskdesk task reopen <id> [--reason <text>]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reason", Usage: "recorded on the reopen update", Destination: &cmd.reopenReason},
		},
		Action:        cmd.runReopen,
		ShellComplete: TaskIDCompleter(cmd.flags, cmd.app),
	}
}

func (cmd *TaskCmd) replyCmd() *cli.Command {
	return &cli.Command{
		Name:      "reply",
		Usage:     "Reply to a progress update",
		UsageText: "taskdesk task reply <id> <update-id> --message <text>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Required: true, Destination: &cmd.replyMessage},
		},
		Action:        cmd.runReply,
		ShellComplete: TaskIDCompleter(cmd.flags, cmd.app),
	}
}

func (cmd *TaskCmd) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:          "delete",
		Aliases:       []string{"rm"},
		Usage:         "Delete a task and its history (directors only)",
		UsageText:     "taskdesk task delete <id>",
		Action:        cmd.runDelete,
		ShellComplete: TaskIDCompleter(cmd.flags, cmd.app),
	}
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	filter := task.ListFilter{
		Department: cmd.listDepartment,
		Search:     cmd.listSearch,
		AssignedTo: cmd.listAssignee,
	}

	var err error
	if filter.StartDate, err = api.ParseTime(cmd.listStart, time.Local); err != nil {
		return err
	}
	if filter.EndDate, err = api.ParseTime(cmd.listEnd, time.Local); err != nil {
		return err
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	tasks, err := be.ListTasks(ctx, filter)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	for _, t := range tasks {
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk task show <id>")
	if err != nil {
		return err
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	t, err := be.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	if cmd.showJSON {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, t)
	}

	md := TaskMarkdown(t, time.Now())
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render task: %w", err)
	}
	_, err = fmt.Fprint(c.Root().Writer, out)
	return err
}

func (cmd *TaskCmd) runCreate(ctx context.Context, c *cli.Command) error {
	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	if cmd.createTitle == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("--title is required when stdin is not a terminal")
		}
		if err := cmd.runForm(ctx, be); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	in := desk.CreateInput{
		Title:       cmd.createTitle,
		Description: cmd.createDescription,
		Priority:    cmd.createPriority,
	}

	start, err := api.ParseTime(cmd.createStart, time.Local)
	if err != nil {
		return err
	}
	if start != nil {
		in.StartDate = *start
	}
	due, err := api.ParseTime(cmd.createDue, time.Local)
	if err != nil {
		return err
	}
	if due != nil {
		in.DueDate = *due
	}

	in.AssigneeID, err = resolveUserID(ctx, be, cmd.createAssignee)
	if err != nil {
		return err
	}

	t, err := be.CreateTask(ctx, in)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, t)
}

// runForm collects the task fields interactively. Only active heads of
// department and employees are offered as assignees.
func (cmd *TaskCmd) runForm(ctx context.Context, be Backend) error {
	users, err := be.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var options []huh.Option[string]
	for _, u := range users {
		if !u.IsActive || u.Role == user.RoleDirector {
			continue
		}
		label := fmt.Sprintf("%s (%s, %s)", u.Name, u.Role, u.Department)
		options = append(options, huh.NewOption(label, u.ID))
	}
	if len(options) == 0 {
		return fmt.Errorf("no active heads of department or employees to assign")
	}

	fmt.Println(styles.HeaderStyle.Render("New task"))
	fmt.Println()

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Validate(requiredField("title")).
				Value(&cmd.createTitle),
			huh.NewText().
				Title("Description").
				Description("Markdown is rendered by 'task show'").
				Value(&cmd.createDescription),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Low", "low"),
					huh.NewOption("Medium", "medium"),
					huh.NewOption("High", "high"),
				).
				Value(&cmd.createPriority),
			huh.NewSelect[string]().
				Title("Assignee").
				Options(options...).
				Value(&cmd.createAssignee),
			huh.NewInput().
				Title("Due date").
				Description("YYYY-MM-DD, optional").
				Validate(func(s string) error {
					_, err := api.ParseTime(s, time.Local)
					return err
				}).
				Value(&cmd.createDue),
		),
	).Run()
}

func (cmd *TaskCmd) runImport(ctx context.Context, c *cli.Command) error {
	items, err := cmd.importReader.Read(c.Root().Reader)
	if err != nil {
		return err
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	created, err := be.ImportTasks(ctx, items)
	for _, t := range created {
		if werr := iojson.WriteLine(c.Root().Writer, t); werr != nil {
			return werr
		}
	}
	if err != nil {
		return fmt.Errorf("import stopped after %d of %d tasks: %w", len(created), len(items), err)
	}
	return nil
}

func (cmd *TaskCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk task update <id> --status <status> --remarks <text>")
	if err != nil {
		return err
	}

	status, ok := task.ParseStatus(cmd.updateStatus)
	if !ok {
		return fmt.Errorf("invalid status %q: must be one of %s", cmd.updateStatus, joinStatuses())
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	_, u, err := be.SubmitUpdate(ctx, id, status, cmd.updateRemarks)
	if err != nil {
		return fmt.Errorf("submit update: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, u)
}

func (cmd *TaskCmd) runApprove(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk task approve <id> --stage <hod|director>")
	if err != nil {
		return err
	}

	stage, ok := task.ParseStage(cmd.approveStage)
	if !ok {
		return fmt.Errorf("invalid stage %q: must be hod or director", cmd.approveStage)
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	t, changed, err := be.Approve(ctx, id, stage)
	if err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	if !changed {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "already approved")
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runReopen(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk task reopen <id> [--reason <text>]")
	if err != nil {
		return err
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	t, err := be.Reopen(ctx, id, cmd.reopenReason)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runReply(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: taskdesk task reply <id> <update-id> --message <text>")
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	_, r, err := be.Reply(ctx, c.Args().Get(0), c.Args().Get(1), cmd.replyMessage)
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, r)
}

func (cmd *TaskCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := requireArg(c, "taskdesk task delete <id>")
	if err != nil {
		return err
	}

	be, err := newBackend(cmd.flags, cmd.app)
	if err != nil {
		return err
	}

	if err := be.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func requireArg(c *cli.Command, usage string) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return c.Args().Get(0), nil
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func joinStatuses() string {
	names := make([]string, len(task.Statuses))
	for i, s := range task.Statuses {
		names[i] = strings.ToLower(string(s))
	}
	return strings.Join(names, ", ")
}

// resolveUserID maps an email to a user ID. Anything without '@' is taken
// to be an ID already.
func resolveUserID(ctx context.Context, be Backend, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.Contains(ref, "@") {
		return ref, nil
	}
	users, err := be.ListUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, ref) {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("no user with email %s: %w", ref, user.ErrNotFound)
}
