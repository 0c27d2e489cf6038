package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/logging"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

const (
	headerRequestID = "X-Request-ID"
	actorKey        = "actor"
)

// requestLogger tags the request context with a request ID and logs one
// line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), reqID))

		c.Next()

		status := c.Writer.Status()
		event := s.log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = s.log.Error()
		case status >= http.StatusBadRequest:
			event = s.log.Warn()
		}

		event.Ctx(c.Request.Context()).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.log.Error().Ctx(c.Request.Context()).Interface("panic", recovered).Msg("handler panicked")
		s.fail(c, fmt.Errorf("panic: %v", recovered))
	})
}

// authenticate resolves the bearer token to an active user. Blocked or
// deleted users are rejected even when their token is still valid.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			s.fail(c, fmt.Errorf("%w: bearer token required", api.ErrUnauthorized))
			c.Abort()
			return
		}

		userID, err := s.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			s.fail(c, err)
			c.Abort()
			return
		}

		actor, err := s.app.Directory.Actor(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, task.ErrForbidden) {
				err = fmt.Errorf("%w: %s", api.ErrUnauthorized, err)
			}
			s.fail(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(logging.WithUserID(c.Request.Context(), actor.ID))
		c.Next()
	}
}

func actorFrom(c *gin.Context) user.User {
	v, _ := c.Get(actorKey)
	u, _ := v.(user.User)
	return u
}

// fail writes the error response for err.
func (s *Server) fail(c *gin.Context, err error) {
	status, body := api.Classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Ctx(c.Request.Context()).Err(err).Msg("request failed")
	}
	c.JSON(status, body)
}

// bind decodes the JSON body into v, failing the request on error.
func (s *Server) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", api.ErrBadRequest, err))
		return false
	}
	return true
}
