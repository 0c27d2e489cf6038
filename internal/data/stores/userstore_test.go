package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskdesk/internal/core/user"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	u := user.User{Name: "Erin", Email: " erin@example.com ", Role: user.RoleEmployee, Department: "Engineering", IsActive: true}
	require.NoError(t, store.Create(ctx, &u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, "erin@example.com", u.Email)

	got, err := store.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, u.Role, got.Role)
	assert.Equal(t, u.Department, got.Department)
	assert.True(t, got.IsActive)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	byEmail, err := store.GetByEmail(ctx, "ERIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestUserStore_GetMissing(t *testing.T) {
	store := NewUserStore(openTestDB(t))

	_, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	a := user.User{Name: "A", Email: "dup@example.com", Role: user.RoleEmployee, IsActive: true}
	require.NoError(t, store.Create(ctx, &a))

	b := user.User{Name: "B", Email: "DUP@example.com", Role: user.RoleEmployee, IsActive: true}
	require.ErrorIs(t, store.Create(ctx, &b), user.ErrDuplicateEmail)
}

func TestUserStore_SaveAndList(t *testing.T) {
	store := NewUserStore(openTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Zed", "Amy"} {
		u := user.User{Name: name, Email: name + "@example.com", Role: user.RoleHOD, IsActive: true}
		require.NoError(t, store.Create(ctx, &u))
	}

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Amy", users[0].Name)

	amy := users[0]
	amy.IsActive = false
	amy.UpdatedAt = amy.UpdatedAt.Add(5)
	require.NoError(t, store.Save(ctx, amy))

	got, err := store.Get(ctx, amy.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	missing := amy
	missing.ID = "ghost"
	require.ErrorIs(t, store.Save(ctx, missing), user.ErrNotFound)
}
