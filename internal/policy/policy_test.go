package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lostfound/internal/policy"
)

var (
	admin    = policy.Actor{ID: "admin-1", Role: policy.RoleAdmin}
	reporter = policy.Actor{ID: "student-1", Role: policy.RoleStudent}
	other    = policy.Actor{ID: "student-2", Role: policy.RoleStudent}
	nobody   = policy.Actor{}
)

const reporterID = "student-1"

func TestCanCreateItem(t *testing.T) {
	assert.True(t, policy.CanCreateItem(admin))
	assert.True(t, policy.CanCreateItem(reporter))
	assert.False(t, policy.CanCreateItem(nobody))
}

func TestCanMarkClaimed(t *testing.T) {
	tests := []struct {
		name  string
		actor policy.Actor
		want  bool
	}{
		{"admin non-owner", admin, true},
		{"owner student", reporter, true},
		{"non-owner student", other, false},
		{"unauthenticated", nobody, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanMarkClaimed(tt.actor, reporterID))
		})
	}
}

func TestCanUnmarkClaimed(t *testing.T) {
	assert.True(t, policy.CanUnmarkClaimed(admin))
	assert.False(t, policy.CanUnmarkClaimed(reporter))
	assert.False(t, policy.CanUnmarkClaimed(other))
}

func TestCanDeleteItem(t *testing.T) {
	assert.True(t, policy.CanDeleteItem(admin))
	assert.False(t, policy.CanDeleteItem(reporter))
	assert.False(t, policy.CanDeleteItem(other))
}

func TestCanDeleteUser(t *testing.T) {
	assert.True(t, policy.CanDeleteUser(admin, "student-1"))
	assert.False(t, policy.CanDeleteUser(admin, admin.ID), "admins never delete themselves")
	assert.False(t, policy.CanDeleteUser(reporter, "student-2"))
}
