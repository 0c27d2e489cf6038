package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colonyops/taskdesk/internal/desk"
)

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.app.Directory.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var in desk.UserInput
	if !s.bind(c, &in) {
		return
	}

	u, err := s.app.Directory.CreateUser(c.Request.Context(), actorFrom(c).ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var in desk.UserInput
	if !s.bind(c, &in) {
		return
	}

	u, err := s.app.Directory.UpdateUser(c.Request.Context(), actorFrom(c).ID, c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleBlockUser(c *gin.Context) {
	u, err := s.app.Directory.BlockUser(c.Request.Context(), actorFrom(c).ID, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleListDepartments(c *gin.Context) {
	depts, err := s.app.Directory.ListDepartments(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, depts)
}

func (s *Server) handleCreateDepartment(c *gin.Context) {
	var in desk.DepartmentInput
	if !s.bind(c, &in) {
		return
	}

	d, err := s.app.Directory.CreateDepartment(c.Request.Context(), actorFrom(c).ID, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (s *Server) handleUpdateDepartment(c *gin.Context) {
	var in desk.DepartmentInput
	if !s.bind(c, &in) {
		return
	}

	d, err := s.app.Directory.UpdateDepartment(c.Request.Context(), actorFrom(c).ID, c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleBlockDepartment(c *gin.Context) {
	d, err := s.app.Directory.BlockDepartment(c.Request.Context(), actorFrom(c).ID, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
