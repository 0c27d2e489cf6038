package db

import (
	"context"
	"database/sql"
)

const createTask = `
INSERT INTO tasks (
    id, title, description, status, priority, department,
    assigned_to_id, assigned_to, assigned_by,
    start_date, due_date, completed_at, hod_approved, director_approved,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateTaskParams holds the columns of a new task.
type CreateTaskParams = Task

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) error {
	_, err := q.db.ExecContext(ctx, createTask,
		arg.ID, arg.Title, arg.Description, arg.Status, arg.Priority, arg.Department,
		arg.AssignedToID, arg.AssignedTo, arg.AssignedBy,
		arg.StartDate, arg.DueDate, arg.CompletedAt, arg.HodApproved, arg.DirectorApproved,
		arg.CreatedAt, arg.UpdatedAt,
	)
	return err
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.department,
    t.assigned_to_id, t.assigned_to, t.assigned_by,
    t.start_date, t.due_date, t.completed_at, t.hod_approved, t.director_approved,
    t.created_at, t.updated_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Department,
		&t.AssignedToID, &t.AssignedTo, &t.AssignedBy,
		&t.StartDate, &t.DueDate, &t.CompletedAt, &t.HodApproved, &t.DirectorApproved,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (q *Queries) GetTask(ctx context.Context, id string) (Task, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	return scanTask(row)
}

// ListTasksParams narrows ListTasks. Null fields do not filter.
type ListTasksParams struct {
	CreatedFrom sql.NullInt64
	CreatedTo   sql.NullInt64
	Search      sql.NullString // LIKE pattern, escaped with '\'
	AssignedTo  sql.NullString
}

const taskFilter = `
WHERE (?1 IS NULL OR t.created_at >= ?1)
  AND (?2 IS NULL OR t.created_at <= ?2)
  AND (?3 IS NULL OR t.title LIKE ?3 ESCAPE '\' OR t.description LIKE ?3 ESCAPE '\')
  AND (?4 IS NULL OR t.assigned_to_id = ?4)`

func (arg ListTasksParams) args() []any {
	return []any{arg.CreatedFrom, arg.CreatedTo, arg.Search, arg.AssignedTo}
}

// ListTasks returns matching tasks, newest first.
func (q *Queries) ListTasks(ctx context.Context, arg ListTasksParams) ([]Task, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks t`+taskFilter+` ORDER BY t.created_at DESC, t.id`,
		arg.args()...,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTask = `
UPDATE tasks
SET title = ?, description = ?, status = ?, priority = ?, department = ?,
    assigned_to_id = ?, assigned_to = ?, assigned_by = ?,
    start_date = ?, due_date = ?, completed_at = ?,
    hod_approved = ?, director_approved = ?, updated_at = ?
WHERE id = ?`

// UpdateTask rewrites every mutable column and returns the rows changed.
func (q *Queries) UpdateTask(ctx context.Context, arg Task) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTask,
		arg.Title, arg.Description, arg.Status, arg.Priority, arg.Department,
		arg.AssignedToID, arg.AssignedTo, arg.AssignedBy,
		arg.StartDate, arg.DueDate, arg.CompletedAt,
		arg.HodApproved, arg.DirectorApproved, arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteTask removes a task; updates and replies cascade. Returns rows changed.
func (q *Queries) DeleteTask(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const insertTaskUpdate = `
INSERT INTO task_updates (id, task_id, seq, status, previous_status, remarks, comment, updated_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTaskUpdate(ctx context.Context, arg TaskUpdate) error {
	_, err := q.db.ExecContext(ctx, insertTaskUpdate,
		arg.ID, arg.TaskID, arg.Seq, arg.Status, arg.PreviousStatus, arg.Remarks, arg.Comment,
		arg.UpdatedBy, arg.CreatedAt,
	)
	return err
}

const updateColumns = `u.id, u.task_id, u.seq, u.status, u.previous_status, u.remarks, u.comment, u.updated_by, u.created_at`

func scanTaskUpdate(row interface{ Scan(...any) error }) (TaskUpdate, error) {
	var u TaskUpdate
	err := row.Scan(&u.ID, &u.TaskID, &u.Seq, &u.Status, &u.PreviousStatus, &u.Remarks, &u.Comment, &u.UpdatedBy, &u.CreatedAt)
	return u, err
}

func (q *Queries) listTaskUpdates(ctx context.Context, query string, args ...any) ([]TaskUpdate, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []TaskUpdate
	for rows.Next() {
		u, err := scanTaskUpdate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// ListTaskUpdates returns one task's updates in append order.
func (q *Queries) ListTaskUpdates(ctx context.Context, taskID string) ([]TaskUpdate, error) {
	return q.listTaskUpdates(ctx,
		`SELECT `+updateColumns+` FROM task_updates u WHERE u.task_id = ? ORDER BY u.seq`, taskID)
}

// ListTaskUpdatesFiltered returns the updates of every task matching arg,
// ordered by task then append order.
func (q *Queries) ListTaskUpdatesFiltered(ctx context.Context, arg ListTasksParams) ([]TaskUpdate, error) {
	return q.listTaskUpdates(ctx,
		`SELECT `+updateColumns+` FROM task_updates u JOIN tasks t ON t.id = u.task_id`+taskFilter+
			` ORDER BY u.task_id, u.seq`,
		arg.args()...)
}

const insertUpdateReply = `
INSERT INTO update_replies (id, update_id, task_id, message, replied_by, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertUpdateReply(ctx context.Context, arg UpdateReply) error {
	_, err := q.db.ExecContext(ctx, insertUpdateReply,
		arg.ID, arg.UpdateID, arg.TaskID, arg.Message, arg.RepliedBy, arg.CreatedAt,
	)
	return err
}

const replyColumns = `r.id, r.update_id, r.task_id, r.message, r.replied_by, r.created_at`

func (q *Queries) listUpdateReplies(ctx context.Context, query string, args ...any) ([]UpdateReply, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []UpdateReply
	for rows.Next() {
		var r UpdateReply
		if err := rows.Scan(&r.ID, &r.UpdateID, &r.TaskID, &r.Message, &r.RepliedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// ListUpdateReplies returns one task's replies in insertion order.
func (q *Queries) ListUpdateReplies(ctx context.Context, taskID string) ([]UpdateReply, error) {
	return q.listUpdateReplies(ctx,
		`SELECT `+replyColumns+` FROM update_replies r WHERE r.task_id = ? ORDER BY r.created_at, r.rowid`, taskID)
}

// ListUpdateRepliesFiltered returns the replies of every task matching arg.
func (q *Queries) ListUpdateRepliesFiltered(ctx context.Context, arg ListTasksParams) ([]UpdateReply, error) {
	return q.listUpdateReplies(ctx,
		`SELECT `+replyColumns+` FROM update_replies r JOIN tasks t ON t.id = r.task_id`+taskFilter+
			` ORDER BY r.task_id, r.created_at, r.rowid`,
		arg.args()...)
}
