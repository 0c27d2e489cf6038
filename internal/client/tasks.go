package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/desk"
)

func taskPath(id string, parts ...string) string {
	p := "/api/tasks/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// ListTasks implements activity.Source.
func (c *Client) ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	q := url.Values{}
	if filter.StartDate != nil {
		q.Set("startDate", api.FormatTime(*filter.StartDate))
	}
	if filter.EndDate != nil {
		q.Set("endDate", api.FormatTime(*filter.EndDate))
	}
	if filter.Department != "" {
		q.Set("department", filter.Department)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.AssignedTo != "" {
		q.Set("assignedTo", filter.AssignedTo)
	}

	var out []task.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask returns a task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &out)
	return out, err
}

// CreateTask creates a task. The caller must be a director.
func (c *Client) CreateTask(ctx context.Context, in desk.CreateInput) (task.Task, error) {
	var out task.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", nil, in, &out)
	return out, err
}

// DeleteTask hard-deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

// SubmitUpdate posts a progress update.
func (c *Client) SubmitUpdate(ctx context.Context, id string, status task.Status, remarks string) (api.UpdateResponse, error) {
	err := c.checkLocally(ctx, id, func(t *task.Task, me user.Ref) error {
		_, err := c.engine.SubmitUpdate(t, me, status, remarks)
		return err
	})
	if err != nil {
		return api.UpdateResponse{}, err
	}

	var out api.UpdateResponse
	err = c.do(ctx, http.MethodPost, taskPath(id, "updates"), nil, api.SubmitUpdateRequest{Status: status, Remarks: remarks}, &out)
	return out, err
}

// Approve grants an approval stage.
func (c *Client) Approve(ctx context.Context, id string, stage task.Stage) (api.ApproveResponse, error) {
	err := c.checkLocally(ctx, id, func(t *task.Task, me user.Ref) error {
		_, err := c.engine.Approve(t, me, stage)
		return err
	})
	if err != nil {
		return api.ApproveResponse{}, err
	}

	var out api.ApproveResponse
	err = c.do(ctx, http.MethodPost, taskPath(id, "approve"), nil, api.ApproveRequest{Stage: stage}, &out)
	return out, err
}

// Reopen reopens an approved task.
func (c *Client) Reopen(ctx context.Context, id, reason string) (task.Task, error) {
	err := c.checkLocally(ctx, id, func(t *task.Task, me user.Ref) error {
		_, err := c.engine.Reopen(t, me, reason)
		return err
	})
	if err != nil {
		return task.Task{}, err
	}

	var out task.Task
	err = c.do(ctx, http.MethodPost, taskPath(id, "reopen"), nil, api.ReopenRequest{Reason: reason}, &out)
	return out, err
}

// Reply replies to an update.
func (c *Client) Reply(ctx context.Context, id, updateID, message string) (api.ReplyResponse, error) {
	err := c.checkLocally(ctx, id, func(t *task.Task, me user.Ref) error {
		_, err := c.engine.Reply(t, updateID, me, message)
		return err
	})
	if err != nil {
		return api.ReplyResponse{}, err
	}

	var out api.ReplyResponse
	err = c.do(ctx, http.MethodPost, taskPath(id, "updates", updateID, "replies"), nil, api.ReplyRequest{Message: message}, &out)
	return out, err
}
