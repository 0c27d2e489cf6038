package db

import (
	"context"
	"database/sql"
)

const createDepartment = `
INSERT INTO departments (id, name, code, description, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// CreateDepartmentParams holds the columns of a new department.
type CreateDepartmentParams = Department

func (q *Queries) CreateDepartment(ctx context.Context, arg CreateDepartmentParams) error {
	_, err := q.db.ExecContext(ctx, createDepartment,
		arg.ID, arg.Name, arg.Code, arg.Description, arg.IsActive, arg.CreatedAt, arg.UpdatedAt,
	)
	return err
}

const departmentColumns = `id, name, code, description, is_active, created_at, updated_at`

func scanDepartment(row interface{ Scan(...any) error }) (Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (q *Queries) GetDepartment(ctx context.Context, id string) (Department, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = ?`, id)
	return scanDepartment(row)
}

func (q *Queries) GetDepartmentByName(ctx context.Context, name string) (Department, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+departmentColumns+` FROM departments WHERE name = ?`, name)
	return scanDepartment(row)
}

func (q *Queries) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const updateDepartment = `
UPDATE departments
SET name = ?, code = ?, description = ?, is_active = ?, updated_at = ?
WHERE id = ?`

// UpdateDepartmentParams holds the mutable department columns.
type UpdateDepartmentParams struct {
	Name        string
	Code        string
	Description sql.NullString
	IsActive    bool
	UpdatedAt   int64
	ID          string
}

// UpdateDepartment returns the number of rows changed.
func (q *Queries) UpdateDepartment(ctx context.Context, arg UpdateDepartmentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateDepartment,
		arg.Name, arg.Code, arg.Description, arg.IsActive, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createUser = `
INSERT INTO users (id, name, email, role, department, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// CreateUserParams holds the columns of a new user.
type CreateUserParams = User

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID, arg.Name, arg.Email, arg.Role, arg.Department, arg.IsActive, arg.CreatedAt, arg.UpdatedAt,
	)
	return err
}

const userColumns = `id, name, email, role, department, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const updateUser = `
UPDATE users
SET name = ?, email = ?, role = ?, department = ?, is_active = ?, updated_at = ?
WHERE id = ?`

// UpdateUserParams holds the mutable user columns.
type UpdateUserParams struct {
	Name       string
	Email      string
	Role       string
	Department string
	IsActive   bool
	UpdatedAt  int64
	ID         string
}

// UpdateUser returns the number of rows changed.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUser,
		arg.Name, arg.Email, arg.Role, arg.Department, arg.IsActive, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
