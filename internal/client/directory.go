package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/desk"
)

// ListUsers implements activity.Source.
func (c *Client) ListUsers(ctx context.Context) ([]user.User, error) {
	var out []user.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser adds a user.
func (c *Client) CreateUser(ctx context.Context, in desk.UserInput) (user.User, error) {
	var out user.User
	err := c.do(ctx, http.MethodPost, "/api/users", nil, in, &out)
	return out, err
}

// UpdateUser replaces a user's editable fields.
func (c *Client) UpdateUser(ctx context.Context, id string, in desk.UserInput) (user.User, error) {
	var out user.User
	err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

// BlockUser deactivates a user.
func (c *Client) BlockUser(ctx context.Context, id string) (user.User, error) {
	var out user.User
	err := c.do(ctx, http.MethodPost, "/api/users/"+url.PathEscape(id)+"/block", nil, nil, &out)
	return out, err
}

// ListDepartments implements activity.Source.
func (c *Client) ListDepartments(ctx context.Context) ([]department.Department, error) {
	var out []department.Department
	if err := c.do(ctx, http.MethodGet, "/api/departments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDepartment adds a department.
func (c *Client) CreateDepartment(ctx context.Context, in desk.DepartmentInput) (department.Department, error) {
	var out department.Department
	err := c.do(ctx, http.MethodPost, "/api/departments", nil, in, &out)
	return out, err
}

// UpdateDepartment replaces a department's editable fields.
func (c *Client) UpdateDepartment(ctx context.Context, id string, in desk.DepartmentInput) (department.Department, error) {
	var out department.Department
	err := c.do(ctx, http.MethodPut, "/api/departments/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

// BlockDepartment deactivates a department.
func (c *Client) BlockDepartment(ctx context.Context, id string) (department.Department, error) {
	var out department.Department
	err := c.do(ctx, http.MethodPost, "/api/departments/"+url.PathEscape(id)+"/block", nil, nil, &out)
	return out, err
}
