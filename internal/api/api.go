// Package api defines the JSON wire types shared by the HTTP server and
// client, and the mapping between domain errors and HTTP responses.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskdesk/internal/auth"
	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// Code is the machine-readable error class in an ErrorResponse.
type Code string

const (
	CodeValidation   Code = "validation"
	CodeForbidden    Code = "forbidden"
	CodeInvalidState Code = "invalid_state"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeBadRequest   Code = "bad_request"
	CodeInternal     Code = "internal"
)

// ErrUnauthorized is returned by the client when the server rejects the
// bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// ErrBadRequest marks malformed requests such as unparsable JSON or query
// parameters.
var ErrBadRequest = errors.New("bad request")

// FieldError is one field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    Code         `json:"code"`
	Message string       `json:"error"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Classify maps an error to its HTTP status and response body.
func Classify(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Message: err.Error()}

	switch {
	case errors.Is(err, task.ErrValidation):
		resp.Code = CodeValidation
		for _, fe := range task.FieldErrors(err) {
			resp.Fields = append(resp.Fields, FieldError{Field: fe.Field, Message: fe.Err.Error()})
		}
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, task.ErrForbidden):
		resp.Code = CodeForbidden
		return http.StatusForbidden, resp
	case errors.Is(err, task.ErrInvalidState):
		resp.Code = CodeInvalidState
		return http.StatusConflict, resp
	case errors.Is(err, user.ErrDuplicateEmail), errors.Is(err, department.ErrDuplicateName):
		resp.Code = CodeConflict
		return http.StatusConflict, resp
	case errors.Is(err, task.ErrNotFound), errors.Is(err, user.ErrNotFound), errors.Is(err, department.ErrNotFound):
		resp.Code = CodeNotFound
		return http.StatusNotFound, resp
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, ErrUnauthorized):
		resp.Code = CodeUnauthorized
		return http.StatusUnauthorized, resp
	case errors.Is(err, ErrBadRequest):
		resp.Code = CodeBadRequest
		return http.StatusBadRequest, resp
	default:
		resp.Code = CodeInternal
		resp.Message = "internal server error"
		return http.StatusInternalServerError, resp
	}
}

// Err rebuilds a domain error from a response so callers can match the
// same sentinels they would get in local mode.
func (r ErrorResponse) Err() error {
	msg := r.Message
	switch r.Code {
	case CodeValidation:
		var fe criterio.FieldErrorsBuilder
		for _, f := range r.Fields {
			fe = fe.Append(f.Field, errors.New(f.Message))
		}
		if fields := fe.ToError(); fields != nil {
			return fmt.Errorf("%w: %w", task.ErrValidation, fields)
		}
		return fmt.Errorf("%w: %s", task.ErrValidation, trimPrefix(msg, task.ErrValidation))
	case CodeForbidden:
		return fmt.Errorf("%w: %s", task.ErrForbidden, trimPrefix(msg, task.ErrForbidden))
	case CodeInvalidState:
		return fmt.Errorf("%w: %s", task.ErrInvalidState, trimPrefix(msg, task.ErrInvalidState))
	case CodeNotFound:
		return fmt.Errorf("%w: %s", task.ErrNotFound, msg)
	case CodeUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case CodeBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	default:
		return fmt.Errorf("server error: %s", msg)
	}
}

func trimPrefix(msg string, sentinel error) string {
	return strings.TrimPrefix(msg, sentinel.Error()+": ")
}

// SubmitUpdateRequest is the body of POST /api/tasks/:id/updates.
type SubmitUpdateRequest struct {
	Status  task.Status `json:"status"`
	Remarks string      `json:"remarks"`
}

// ApproveRequest is the body of POST /api/tasks/:id/approve.
type ApproveRequest struct {
	Stage task.Stage `json:"stage"`
}

// ReopenRequest is the body of POST /api/tasks/:id/reopen.
type ReopenRequest struct {
	Reason string `json:"reason"`
}

// ReplyRequest is the body of POST /api/tasks/:id/updates/:updateId/replies.
type ReplyRequest struct {
	Message string `json:"message"`
}

// UpdateResponse is returned after a progress update.
type UpdateResponse struct {
	Task   task.Task   `json:"task"`
	Update task.Update `json:"update"`
}

// ApproveResponse is returned after an approval. Changed is false when the
// stage had already been granted.
type ApproveResponse struct {
	Task    task.Task `json:"task"`
	Changed bool      `json:"changed"`
}

// ReplyResponse is returned after a reply.
type ReplyResponse struct {
	Task  task.Task  `json:"task"`
	Reply task.Reply `json:"reply"`
}

// ActivityResponse is the body of GET /api/activity.
type ActivityResponse struct {
	Filter  daterange.Filter `json:"filter"`
	Entries []activity.Entry `json:"entries"`
}

// dateLayouts are accepted for date query parameters.
var dateLayouts = []string{time.RFC3339Nano, time.DateOnly}

// ParseTime parses a query parameter as RFC 3339 or YYYY-MM-DD in loc.
// Empty input yields nil.
func ParseTime(v string, loc *time.Location) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD or RFC 3339", ErrBadRequest, v)
}

// FormatTime renders t for a query parameter.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
