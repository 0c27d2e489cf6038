package stores

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/data/db"
)

// TaskStore implements task.Store using SQLite. A task is spread across the
// tasks, task_updates and update_replies tables and reassembled on read.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create persists a new task together with any updates it already carries.
// Generates an ID and timestamps if not set.
func (s *TaskStore) Create(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if t.Updates == nil {
		t.Updates = []task.Update{}
	}

	row, err := taskToRow(*t)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	err = s.db.WithTx(ctx, func(q *db.Queries) error {
		if err := q.CreateTask(ctx, row); err != nil {
			return err
		}
		return appendChildren(ctx, q, task.Task{ID: t.ID}, *t)
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Get returns a task with its updates and replies.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Task, error) {
	t, err := loadTask(ctx, s.db.Queries(), id)
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks matching filter, newest first.
func (s *TaskStore) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	if filter.Department != "" && !doublestar.ValidatePattern(strings.ToLower(filter.Department)) {
		return nil, fmt.Errorf("%w: invalid department pattern %q", task.ErrValidation, filter.Department)
	}

	params := listParams(filter)
	q := s.db.Queries()

	rows, err := q.ListTasks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	updates, err := q.ListTaskUpdatesFiltered(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list task updates: %w", err)
	}
	replies, err := q.ListUpdateRepliesFiltered(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list update replies: %w", err)
	}

	byTask := make(map[string][]db.TaskUpdate, len(rows))
	for _, u := range updates {
		byTask[u.TaskID] = append(byTask[u.TaskID], u)
	}
	repliesByTask := make(map[string][]db.UpdateReply)
	for _, r := range replies {
		repliesByTask[r.TaskID] = append(repliesByTask[r.TaskID], r)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		if !matchDepartment(filter.Department, row.Department) {
			continue
		}
		t, err := assemble(row, byTask[row.ID], repliesByTask[row.ID])
		if err != nil {
			return nil, fmt.Errorf("convert task %s: %w", row.ID, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Mutate loads a task, applies fn, and persists the result in one
// transaction. Updates and replies are append-only: anything fn appends is
// inserted, existing entries are never rewritten. If fn returns an error
// nothing is written and the error is returned unwrapped.
func (s *TaskStore) Mutate(ctx context.Context, id string, fn func(*task.Task) error) (task.Task, error) {
	var result task.Task

	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		before, err := loadTask(ctx, q, id)
		if err != nil {
			if IsNotFoundError(err) {
				return task.ErrNotFound
			}
			return fmt.Errorf("load task: %w", err)
		}

		after := before.Clone()
		if err := fn(&after); err != nil {
			return err
		}
		after.ID = before.ID
		after.CreatedAt = before.CreatedAt

		row, err := taskToRow(after)
		if err != nil {
			return err
		}
		if _, err := q.UpdateTask(ctx, row); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := appendChildren(ctx, q, before, after); err != nil {
			return err
		}

		result = after
		return nil
	})
	if err != nil {
		return task.Task{}, err
	}
	return result, nil
}

// Delete removes a task and its updates and replies.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	n, err := s.db.Queries().DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

// appendChildren inserts the updates and replies present in after but not
// in before.
func appendChildren(ctx context.Context, q *db.Queries, before, after task.Task) error {
	known := make(map[string]int, len(before.Updates))
	for _, u := range before.Updates {
		known[u.ID] = len(u.Replies)
	}

	for i, u := range after.Updates {
		seen, ok := known[u.ID]
		if !ok {
			if i < len(before.Updates) {
				return fmt.Errorf("%w: updates are append-only", task.ErrInvalidState)
			}
			row, err := updateToRow(after.ID, int64(i), u)
			if err != nil {
				return err
			}
			if err := q.InsertTaskUpdate(ctx, row); err != nil {
				return fmt.Errorf("insert update: %w", err)
			}
		}

		for _, r := range u.Replies[min(seen, len(u.Replies)):] {
			row, err := replyToRow(after.ID, u.ID, r)
			if err != nil {
				return err
			}
			if err := q.InsertUpdateReply(ctx, row); err != nil {
				return fmt.Errorf("insert reply: %w", err)
			}
		}
	}
	return nil
}

func loadTask(ctx context.Context, q *db.Queries, id string) (task.Task, error) {
	row, err := q.GetTask(ctx, id)
	if err != nil {
		return task.Task{}, err
	}
	updates, err := q.ListTaskUpdates(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("list updates: %w", err)
	}
	replies, err := q.ListUpdateReplies(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("list replies: %w", err)
	}
	return assemble(row, updates, replies)
}

func listParams(f task.ListFilter) db.ListTasksParams {
	var p db.ListTasksParams
	if f.StartDate != nil {
		p.CreatedFrom = sql.NullInt64{Int64: f.StartDate.UnixNano(), Valid: true}
	}
	if f.EndDate != nil {
		p.CreatedTo = sql.NullInt64{Int64: f.EndDate.UnixNano(), Valid: true}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p.Search = toNullString("%" + escapeLike(s) + "%")
	}
	p.AssignedTo = toNullString(f.AssignedTo)
	return p
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// matchDepartment compares case-insensitively, treating pattern as a
// doublestar glob.
func matchDepartment(pattern, department string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(strings.ToLower(pattern), strings.ToLower(department))
	return err == nil && ok
}

func assemble(row db.Task, updates []db.TaskUpdate, replies []db.UpdateReply) (task.Task, error) {
	t, err := rowToTask(row)
	if err != nil {
		return task.Task{}, err
	}

	index := make(map[string]int, len(updates))
	t.Updates = make([]task.Update, 0, len(updates))
	for _, ur := range updates {
		u, err := rowToUpdate(ur)
		if err != nil {
			return task.Task{}, err
		}
		index[u.ID] = len(t.Updates)
		t.Updates = append(t.Updates, u)
	}

	for _, rr := range replies {
		i, ok := index[rr.UpdateID]
		if !ok {
			continue
		}
		r, err := rowToReply(rr)
		if err != nil {
			return task.Task{}, err
		}
		t.Updates[i].Replies = append(t.Updates[i].Replies, r)
	}
	return t, nil
}

func taskToRow(t task.Task) (db.Task, error) {
	assignedTo, err := encodeRef(t.AssignedTo)
	if err != nil {
		return db.Task{}, err
	}
	assignedBy, err := encodeRef(t.AssignedBy)
	if err != nil {
		return db.Task{}, err
	}

	return db.Task{
		ID:               t.ID,
		Title:            t.Title,
		Description:      toNullString(t.Description),
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		Department:       t.Department,
		AssignedToID:     t.AssignedTo.ID,
		AssignedTo:       assignedTo,
		AssignedBy:       assignedBy,
		StartDate:        t.StartDate.UnixNano(),
		DueDate:          toNullTime(t.DueDate),
		CompletedAt:      toNullTimePtr(t.CompletedAt),
		HodApproved:      t.HODApproved,
		DirectorApproved: t.DirectorApproved,
		CreatedAt:        t.CreatedAt.UnixNano(),
		UpdatedAt:        t.UpdatedAt.UnixNano(),
	}, nil
}

func rowToTask(row db.Task) (task.Task, error) {
	assignedTo, err := decodeRef(row.AssignedTo)
	if err != nil {
		return task.Task{}, err
	}
	assignedBy, err := decodeRef(row.AssignedBy)
	if err != nil {
		return task.Task{}, err
	}

	return task.Task{
		ID:               row.ID,
		Title:            row.Title,
		Description:      fromNullString(row.Description),
		Status:           task.Status(row.Status),
		Priority:         task.Priority(row.Priority),
		Department:       row.Department,
		AssignedTo:       assignedTo,
		AssignedBy:       assignedBy,
		StartDate:        fromUnix(row.StartDate),
		DueDate:          fromNullTime(row.DueDate),
		CompletedAt:      fromNullTimePtr(row.CompletedAt),
		HODApproved:      row.HodApproved,
		DirectorApproved: row.DirectorApproved,
		CreatedAt:        fromUnix(row.CreatedAt),
		UpdatedAt:        fromUnix(row.UpdatedAt),
	}, nil
}

func updateToRow(taskID string, seq int64, u task.Update) (db.TaskUpdate, error) {
	by, err := encodeRef(u.UpdatedBy)
	if err != nil {
		return db.TaskUpdate{}, err
	}
	createdAt, _ := u.EventTime()
	return db.TaskUpdate{
		ID:             u.ID,
		TaskID:         taskID,
		Seq:            seq,
		Status:         string(u.Status),
		PreviousStatus: toNullString(string(u.PreviousStatus)),
		Remarks:        toNullString(u.Remarks),
		Comment:        toNullString(u.Comment),
		UpdatedBy:      by,
		CreatedAt:      createdAt.UnixNano(),
	}, nil
}

func rowToUpdate(row db.TaskUpdate) (task.Update, error) {
	by, err := decodeRef(row.UpdatedBy)
	if err != nil {
		return task.Update{}, err
	}
	return task.Update{
		ID:             row.ID,
		Status:         task.Status(row.Status),
		PreviousStatus: task.Status(fromNullString(row.PreviousStatus)),
		Remarks:        fromNullString(row.Remarks),
		Comment:        fromNullString(row.Comment),
		UpdatedBy:      by,
		CreatedAt:      fromUnix(row.CreatedAt),
		Replies:        []task.Reply{},
	}, nil
}

func replyToRow(taskID, updateID string, r task.Reply) (db.UpdateReply, error) {
	by, err := encodeRef(r.RepliedBy)
	if err != nil {
		return db.UpdateReply{}, err
	}
	return db.UpdateReply{
		ID:        r.ID,
		UpdateID:  updateID,
		TaskID:    taskID,
		Message:   r.Message,
		RepliedBy: by,
		CreatedAt: r.CreatedAt.UnixNano(),
	}, nil
}

func rowToReply(row db.UpdateReply) (task.Reply, error) {
	by, err := decodeRef(row.RepliedBy)
	if err != nil {
		return task.Reply{}, err
	}
	return task.Reply{
		ID:        row.ID,
		Message:   row.Message,
		RepliedBy: by,
		CreatedAt: fromUnix(row.CreatedAt),
	}, nil
}
