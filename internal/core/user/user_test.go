package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"director", RoleDirector, true},
		{" HOD ", RoleHOD, true},
		{"Employee", RoleEmployee, true},
		{"manager", Role("MANAGER"), false},
		{"", Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUser_Ref(t *testing.T) {
	u := User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: RoleHOD, Department: "Engineering", IsActive: true}

	ref := u.Ref()
	assert.Equal(t, Ref{ID: "u1", Name: "Ada", Role: RoleHOD, Department: "Engineering"}, ref)
	assert.False(t, ref.IsZero())
	assert.True(t, Ref{}.IsZero())
}
