package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/desk"
)

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, actorFrom(c))
}

func (s *Server) handleListTasks(c *gin.Context) {
	start, err := api.ParseTime(c.Query("startDate"), time.Local)
	if err != nil {
		s.fail(c, err)
		return
	}
	end, err := api.ParseTime(c.Query("endDate"), time.Local)
	if err != nil {
		s.fail(c, err)
		return
	}

	tasks, err := s.app.Tasks.List(c.Request.Context(), task.ListFilter{
		StartDate:  start,
		EndDate:    end,
		Department: c.Query("department"),
		Search:     c.Query("search"),
		AssignedTo: c.Query("assignedTo"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.app.Tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var in desk.CreateInput
	if !s.bind(c, &in) {
		return
	}

	t, err := s.app.Tasks.Create(c.Request.Context(), actorFrom(c).ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.app.Tasks.Delete(c.Request.Context(), actorFrom(c).ID, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSubmitUpdate(c *gin.Context) {
	var req api.SubmitUpdateRequest
	if !s.bind(c, &req) {
		return
	}

	t, u, err := s.app.Tasks.SubmitUpdate(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req.Status, req.Remarks)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.UpdateResponse{Task: t, Update: u})
}

func (s *Server) handleApprove(c *gin.Context) {
	var req api.ApproveRequest
	if !s.bind(c, &req) {
		return
	}

	t, changed, err := s.app.Tasks.Approve(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req.Stage)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ApproveResponse{Task: t, Changed: changed})
}

func (s *Server) handleReopen(c *gin.Context) {
	var req api.ReopenRequest
	if c.Request.ContentLength != 0 && !s.bind(c, &req) {
		return
	}

	t, err := s.app.Tasks.Reopen(c.Request.Context(), actorFrom(c).ID, c.Param("id"), req.Reason)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleReply(c *gin.Context) {
	var req api.ReplyRequest
	if !s.bind(c, &req) {
		return
	}

	t, r, err := s.app.Tasks.Reply(c.Request.Context(), actorFrom(c).ID, c.Param("id"), c.Param("updateId"), req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.ReplyResponse{Task: t, Reply: r})
}
