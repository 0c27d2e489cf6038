package desk

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/taskdesk/internal/core/activity"
	"github.com/colonyops/taskdesk/internal/core/daterange"
	"github.com/colonyops/taskdesk/internal/core/department"
	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// ActivityService loads snapshots from a Source and reconstructs the feed.
type ActivityService struct {
	src  activity.Source
	opts activity.Options
	log  zerolog.Logger
	now  func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(src activity.Source, opts activity.Options, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		src:  src,
		opts: opts,
		log:  log.With().Str("component", "activity-service").Logger(),
		now:  time.Now,
	}
}

// Load fetches tasks, users and departments concurrently. A failed fetch is
// logged and contributes an empty list; Load itself only fails when ctx is
// cancelled.
func (s *ActivityService) Load(ctx context.Context) (activity.Snapshot, error) {
	snap := activity.Snapshot{
		Tasks:       []task.Task{},
		Users:       []user.User{},
		Departments: []department.Department{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := s.src.ListTasks(gctx, task.ListFilter{})
		if err != nil {
			s.log.Warn().Err(err).Str("source", "tasks").Msg("activity fetch failed, using empty list")
			return nil
		}
		snap.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		users, err := s.src.ListUsers(gctx)
		if err != nil {
			s.log.Warn().Err(err).Str("source", "users").Msg("activity fetch failed, using empty list")
			return nil
		}
		snap.Users = users
		return nil
	})
	g.Go(func() error {
		depts, err := s.src.ListDepartments(gctx)
		if err != nil {
			s.log.Warn().Err(err).Str("source", "departments").Msg("activity fetch failed, using empty list")
			return nil
		}
		snap.Departments = depts
		return nil
	})

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return activity.Snapshot{}, err
	}
	return snap, nil
}

// Feed resolves filter for viewer and returns the reconstructed entries.
func (s *ActivityService) Feed(ctx context.Context, viewer activity.Viewer, filter daterange.Filter, custom daterange.Custom) ([]activity.Entry, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	q := activity.NewQuery(filter, custom, s.now(), viewer)
	return activity.Reconstruct(snap, q, s.opts), nil
}

// StoreSource adapts the local stores to activity.Source.
type StoreSource struct {
	tasks task.Store
	users user.Store
	depts department.Store
}

var _ activity.Source = (*StoreSource)(nil)

// NewStoreSource creates a Source reading straight from the stores.
func NewStoreSource(tasks task.Store, users user.Store, depts department.Store) *StoreSource {
	return &StoreSource{tasks: tasks, users: users, depts: depts}
}

func (s *StoreSource) ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	return s.tasks.List(ctx, filter)
}

func (s *StoreSource) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

func (s *StoreSource) ListDepartments(ctx context.Context) ([]department.Department, error) {
	return s.depts.List(ctx)
}
