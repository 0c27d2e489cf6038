// Package server exposes the desk services over a JSON HTTP API. Every
// write is checked again here against freshly loaded records, whatever the
// client checked before sending it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/colonyops/taskdesk/internal/auth"
	"github.com/colonyops/taskdesk/internal/core/config"
	"github.com/colonyops/taskdesk/internal/desk"
)

const shutdownTimeout = 10 * time.Second

// Server is the taskdesk HTTP API.
type Server struct {
	app    *desk.App
	tokens *auth.Tokens
	cfg    config.ServerConfig
	log    zerolog.Logger
	router *gin.Engine
}

// New creates a server and registers its routes.
func New(app *desk.App, tokens *auth.Tokens, cfg config.ServerConfig, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	s := &Server{
		app:    app,
		tokens: tokens,
		cfg:    cfg,
		log:    log.With().Str("component", "server").Logger(),
		router: router,
	}

	router.Use(s.requestLogger(), s.recovery())
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api", s.authenticate())
	{
		api.GET("/me", s.handleMe)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/updates", s.handleSubmitUpdate)
		api.POST("/tasks/:id/approve", s.handleApprove)
		api.POST("/tasks/:id/reopen", s.handleReopen)
		api.POST("/tasks/:id/updates/:updateId/replies", s.handleReply)

		api.GET("/users", s.handleListUsers)
		api.POST("/users", s.handleCreateUser)
		api.PUT("/users/:id", s.handleUpdateUser)
		api.POST("/users/:id/block", s.handleBlockUser)

		api.GET("/departments", s.handleListDepartments)
		api.POST("/departments", s.handleCreateDepartment)
		api.PUT("/departments/:id", s.handleUpdateDepartment)
		api.POST("/departments/:id/block", s.handleBlockDepartment)

		api.GET("/activity", s.handleActivity)
	}

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("api server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info().Msg("shutting down api server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
