package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colonyops/taskdesk/internal/api"
	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
)

// handleActivity renders the feed for the caller: employees only see their
// own department.
func (s *Server) handleActivity(c *gin.Context) {
	filter, err := daterange.ParseFilter(c.Query("filter"))
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %w", api.ErrBadRequest, err))
		return
	}

	from, err := api.ParseTime(c.Query("from"), time.Local)
	if err != nil {
		s.fail(c, err)
		return
	}
	to, err := api.ParseTime(c.Query("to"), time.Local)
	if err != nil {
		s.fail(c, err)
		return
	}

	actor := actorFrom(c)
	viewer := activity.Viewer{Role: actor.Role, Department: actor.Department}

	entries, err := s.app.Activity.Feed(c.Request.Context(), viewer, filter, daterange.Custom{From: from, To: to})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ActivityResponse{Filter: filter, Entries: entries})
}
