// Package desk holds the services that combine the core engines with
// persistence and the event bus. Commands, the HTTP server and the TUI
// consume App instead of wiring stores themselves.
package desk

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/taskdesk/internal/core/config"
	"github.com/colonyops/taskdesk/internal/core/eventbus"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/data/db"
	"github.com/colonyops/taskdesk/internal/data/stores"
)

// App is the central entry point for all taskdesk operations.
type App struct {
	Tasks     *TaskService
	Directory *DirectoryService
	Activity  *ActivityService

	Config *config.Config
	DB     *db.DB
	Bus    *eventbus.EventBus
}

// NewApp constructs an App backed by the SQLite stores in database.
func NewApp(cfg *config.Config, database *db.DB, bus *eventbus.EventBus, log zerolog.Logger) *App {
	users := stores.NewUserStore(database)
	depts := stores.NewDepartmentStore(database)
	tasks := stores.NewTaskStore(database)

	return &App{
		Tasks:     NewTaskService(tasks, users, task.NewEngine(), bus, log),
		Directory: NewDirectoryService(users, depts, bus, log),
		Activity:  NewActivityService(NewStoreSource(tasks, users, depts), cfg.Activity.Options(), log),
		Config:    cfg,
		DB:        database,
		Bus:       bus,
	}
}
