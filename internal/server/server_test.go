package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/auth"
	"github.com/colonyops/taskdesk/internal/core/config"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
	"github.com/colonyops/taskdesk/internal/data/db"
	"github.com/colonyops/taskdesk/internal/desk"
)

type testEnv struct {
	handler http.Handler
	app     *desk.App
	tokens  *auth.Tokens

	director user.User
	hod      user.User
	employee user.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Server.TokenSecret = "test-secret-0123456789"

	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	app := desk.NewApp(&cfg, database, nil, zerolog.Nop())
	tokens := auth.NewTokens(cfg.Server.TokenSecret, time.Hour)

	env := &testEnv{
		handler: New(app, tokens, cfg.Server, zerolog.Nop()).Handler(),
		app:     app,
		tokens:  tokens,
	}

	env.director, err = app.Directory.Bootstrap(ctx, desk.UserInput{Name: "Dana", Email: "dana@example.com"})
	require.NoError(t, err)
	_, err = app.Directory.CreateDepartment(ctx, env.director.ID, desk.DepartmentInput{Name: "Engineering"})
	require.NoError(t, err)

	env.hod, err = app.Directory.CreateUser(ctx, env.director.ID, desk.UserInput{
		Name: "Hank", Email: "hank@example.com", Role: "HOD", Department: "Engineering",
	})
	require.NoError(t, err)
	env.employee, err = app.Directory.CreateUser(ctx, env.director.ID, desk.UserInput{
		Name: "Erin", Email: "erin@example.com", Role: "EMPLOYEE", Department: "Engineering",
	})
	require.NoError(t, err)

	return env
}

func (e *testEnv) token(t *testing.T, u user.User) string {
	t.Helper()
	raw, _, err := e.tokens.Issue(u.ID, string(u.Role))
	require.NoError(t, err)
	return raw
}

func (e *testEnv) do(t *testing.T, as *user.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(t, *as))
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createTask(t *testing.T) task.Task {
	t.Helper()
	rec := e.do(t, &e.director, http.MethodPost, "/api/tasks", desk.CreateInput{
		Title:      "Rotate certificates",
		Priority:   "HIGH",
		AssigneeID: e.employee.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[task.Task](t, rec)
}

func TestHealthz(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.do(t, nil, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestAuthentication(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, nil, http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, api.CodeUnauthorized, decode[api.ErrorResponse](t, rec).Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("blocked user", func(t *testing.T) {
		_, err := env.app.Directory.BlockUser(context.Background(), env.director.ID, env.hod.ID)
		require.NoError(t, err)

		rec := env.do(t, &env.hod, http.MethodGet, "/api/tasks", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me", func(t *testing.T) {
		rec := env.do(t, &env.employee, http.MethodGet, "/api/me", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, env.employee.ID, decode[user.User](t, rec).ID)
	})
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	env := setupTestEnv(t)
	tk := env.createTask(t)
	base := "/api/tasks/" + tk.ID

	rec := env.do(t, &env.employee, http.MethodPost, base+"/updates", api.SubmitUpdateRequest{Status: task.StatusCompleted, Remarks: "done"})
	assert.Equal(t, http.StatusConflict, rec.Code, "PENDING cannot jump to COMPLETED")

	rec = env.do(t, &env.employee, http.MethodPost, base+"/updates", api.SubmitUpdateRequest{Status: task.StatusInProgress, Remarks: "on it"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	upd := decode[api.UpdateResponse](t, rec)
	assert.Equal(t, task.StatusInProgress, upd.Task.Status)

	rec = env.do(t, &env.employee, http.MethodPost, base+"/updates", api.SubmitUpdateRequest{Status: task.StatusCompleted, Remarks: "done"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, &env.director, http.MethodPost, base+"/approve", api.ApproveRequest{Stage: task.StageDirector})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, &env.hod, http.MethodPost, base+"/approve", api.ApproveRequest{Stage: task.StageHOD})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[api.ApproveResponse](t, rec).Changed)

	rec = env.do(t, &env.director, http.MethodPost, base+"/approve", api.ApproveRequest{Stage: task.StageDirector})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, &env.director, http.MethodPost, base+"/approve", api.ApproveRequest{Stage: task.StageDirector})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[api.ApproveResponse](t, rec).Changed)

	rec = env.do(t, &env.employee, http.MethodPost, base+"/updates", api.SubmitUpdateRequest{Status: task.StatusCompleted, Remarks: "again"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, &env.employee, http.MethodPost, base+"/reopen", api.ReopenRequest{})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, &env.director, http.MethodPost, base+"/reopen", api.ReopenRequest{Reason: "missed a host"})
	require.Equal(t, http.StatusOK, rec.Code)
	reopened := decode[task.Task](t, rec)
	assert.Equal(t, task.StatusInProgress, reopened.Status)
	assert.False(t, reopened.DirectorApproved)

	rec = env.do(t, &env.director, http.MethodPost, base+"/updates/"+upd.Update.ID+"/replies", api.ReplyRequest{Message: "thanks"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "thanks", decode[api.ReplyResponse](t, rec).Reply.Message)

	rec = env.do(t, &env.employee, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, task.CheckInvariants(decode[task.Task](t, rec)))
}

func TestErrorMapping(t *testing.T) {
	env := setupTestEnv(t)
	tk := env.createTask(t)

	t.Run("validation lists fields", func(t *testing.T) {
		rec := env.do(t, &env.employee, http.MethodPost, "/api/tasks/"+tk.ID+"/updates", api.SubmitUpdateRequest{Status: "DONE"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		resp := decode[api.ErrorResponse](t, rec)
		fields := map[string]bool{}
		for _, f := range resp.Fields {
			fields[f.Field] = true
		}
		assert.True(t, fields["status"])
		assert.True(t, fields["remarks"])
	})

	t.Run("forbidden create", func(t *testing.T) {
		rec := env.do(t, &env.employee, http.MethodPost, "/api/tasks", desk.CreateInput{Title: "x", AssigneeID: env.employee.ID})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := env.do(t, &env.director, http.MethodGet, "/api/tasks/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+env.token(t, env.director))
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := env.do(t, &env.director, http.MethodGet, "/api/tasks?startDate=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTasksFilters(t *testing.T) {
	env := setupTestEnv(t)
	env.createTask(t)

	rec := env.do(t, &env.director, http.MethodGet, "/api/tasks?department=eng*&search=certif", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]task.Task](t, rec), 1)

	rec = env.do(t, &env.director, http.MethodGet, "/api/tasks?department=ops", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]task.Task](t, rec))
}

func TestDirectoryEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.do(t, &env.director, http.MethodPost, "/api/departments", desk.DepartmentInput{Name: "Operations", Code: "ops"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, &env.director, http.MethodPost, "/api/users", desk.UserInput{
		Name: "Olga", Email: "olga@example.com", Role: "hod", Department: "operations",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	olga := decode[user.User](t, rec)
	assert.Equal(t, "Operations", olga.Department)

	rec = env.do(t, &env.hod, http.MethodPost, "/api/users/"+olga.ID+"/block", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, &env.director, http.MethodPost, "/api/users/"+olga.ID+"/block", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[user.User](t, rec).IsActive)

	rec = env.do(t, &env.director, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]user.User](t, rec), 4)
}

func TestActivityEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	env.createTask(t)

	rec := env.do(t, &env.director, http.MethodGet, "/api/activity?filter=today", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[api.ActivityResponse](t, rec)
	assert.NotEmpty(t, resp.Entries)

	rec = env.do(t, &env.director, http.MethodGet, "/api/activity?filter=tomorrow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[api.ActivityResponse](t, rec).Entries)

	rec = env.do(t, &env.director, http.MethodGet, "/api/activity?filter=custom&from=2020-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[api.ActivityResponse](t, rec).Entries)

	rec = env.do(t, &env.director, http.MethodGet, "/api/activity?filter=fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
