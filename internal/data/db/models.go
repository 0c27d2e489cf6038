package db

import "database/sql"

// Department is a row of the departments table.
type Department struct {
	ID          string
	Name        string
	Code        string
	Description sql.NullString
	IsActive    bool
	CreatedAt   int64
	UpdatedAt   int64
}

// User is a row of the users table.
type User struct {
	ID         string
	Name       string
	Email      string
	Role       string
	Department string
	IsActive   bool
	CreatedAt  int64
	UpdatedAt  int64
}

// Task is a row of the tasks table. AssignedTo and AssignedBy hold JSON
// encoded user references.
type Task struct {
	ID               string
	Title            string
	Description      sql.NullString
	Status           string
	Priority         string
	Department       string
	AssignedToID     string
	AssignedTo       string
	AssignedBy       string
	StartDate        int64
	DueDate          sql.NullInt64
	CompletedAt      sql.NullInt64
	HodApproved      bool
	DirectorApproved bool
	CreatedAt        int64
	UpdatedAt        int64
}

// TaskUpdate is a row of the task_updates table.
type TaskUpdate struct {
	ID             string
	TaskID         string
	Seq            int64
	Status         string
	PreviousStatus sql.NullString
	Remarks        sql.NullString
	Comment        sql.NullString
	UpdatedBy      string
	CreatedAt      int64
}

// UpdateReply is a row of the update_replies table.
type UpdateReply struct {
	ID        string
	UpdateID  string
	TaskID    string
	Message   string
	RepliedBy string
	CreatedAt int64
}
