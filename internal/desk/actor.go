package desk

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/taskdesk/internal/core/task"
	"github.com/colonyops/taskdesk/internal/core/user"
)

// loadActor fetches the acting user fresh from the store. Unknown and
// blocked users are refused with task.ErrForbidden.
func loadActor(ctx context.Context, users user.Store, id string) (user.User, error) {
	if id == "" {
		return user.User{}, fmt.Errorf("%w: no acting user", task.ErrForbidden)
	}
	u, err := users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, fmt.Errorf("%w: unknown user %s", task.ErrForbidden, id)
		}
		return user.User{}, fmt.Errorf("load actor: %w", err)
	}
	if !u.IsActive {
		return user.User{}, fmt.Errorf("%w: user %s is blocked", task.ErrForbidden, u.Name)
	}
	return u, nil
}

func requireDirector(u user.User) error {
	if u.Role != user.RoleDirector {
		return fmt.Errorf("%w: only directors can manage the directory", task.ErrForbidden)
	}
	return nil
}
