package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrdering(t *testing.T) {
	assert.Greater(t, RoleAdmin.Level(), RoleManager.Level())
	assert.Greater(t, RoleManager.Level(), RoleEmployee.Level())
	assert.Equal(t, 0, Role("owner").Level())

	assert.True(t, RoleAdmin.AtLeast(RoleManager))
	assert.True(t, RoleManager.AtLeast(RoleManager))
	assert.False(t, RoleEmployee.AtLeast(RoleManager))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in    string
		want  Role
		valid bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"MANAGER", RoleManager, true},
		{"EMPLOYEE", RoleEmployee, true},
		{"admin", Role("admin"), false},
		{"", Role(""), false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.valid, ok, "ParseRole(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
