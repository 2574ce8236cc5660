package leave_test

import (
	"context"
	"testing"

	"go-leave/internal/leave"
	"go-leave/internal/person"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAuthority(t *testing.T) {
	org := &fakeOrganization{
		heads:       map[int64]int64{requesterID: headID},
		authorities: map[int64]int64{requesterID: authorityID, headID: requesterID},
	}
	member := person.Person{ID: requesterID}

	tests := []struct {
		name  string
		actor person.Person
		check func(t *testing.T, a leave.Authority)
	}{
		{
			name:  "office and boss roles",
			actor: person.Person{ID: 9, Roles: []person.Role{person.RoleOffice, person.RoleBoss}},
			check: func(t *testing.T, a leave.Authority) {
				assert.True(t, a.IsPrivileged())
				assert.True(t, a.CanApprove(false))
				assert.False(t, a.IsSelf())
			},
		},
		{
			name:  "department head of member",
			actor: person.Person{ID: headID},
			check: func(t *testing.T, a leave.Authority) {
				assert.True(t, a.Has(leave.CapDepartmentHead))
				assert.True(t, a.Has(leave.CapSubjectIsSecondStageAuthority))
				assert.False(t, a.CanApprove(false))
				assert.True(t, a.CanCancelDirectly())
			},
		},
		{
			name:  "second stage authority of member",
			actor: person.Person{ID: authorityID},
			check: func(t *testing.T, a leave.Authority) {
				assert.True(t, a.Has(leave.CapSecondStageAuthority))
				assert.True(t, a.CanApprove(true))
				assert.False(t, a.IsPrivileged())
			},
		},
		{
			name:  "member on own request",
			actor: member,
			check: func(t *testing.T, a leave.Authority) {
				assert.True(t, a.IsSelf())
				assert.False(t, a.CanApprove(false))
				assert.False(t, a.CanActOnBehalf())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := leave.ResolveAuthority(context.Background(), org, tt.actor, member)
			require.NoError(t, err)
			tt.check(t, a)
		})
	}
}
