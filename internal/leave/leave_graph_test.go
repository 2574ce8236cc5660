package leave_test

import (
	"fmt"
	"testing"

	"go-leave/internal/comment"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/person"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []leave.Status{
	leave.StatusWaiting,
	leave.StatusTemporaryAllowed,
	leave.StatusAllowed,
	leave.StatusAllowedCancellationRequested,
	leave.StatusRejected,
	leave.StatusCancelled,
	leave.StatusRevoked,
}

var authorities = []struct {
	name string
	auth leave.Authority
}{
	{"requester", asRequester()},
	{"head", asHead()},
	{"authority", asAuthority()},
	{"boss", asBoss()},
	{"office", asOffice()},
	{"stranger", asStranger()},
	{"head and authority", leave.NewAuthority(headID, requesterID, leave.CapDepartmentHead, leave.CapSecondStageAuthority)},
	{"self head", leave.NewAuthority(requesterID, requesterID, leave.CapDepartmentHead)},
}

type operation struct {
	name string
	run  func(app leave.Application, auth leave.Authority) (leave.Transition, error)
	// action expected for the status the operation lands in
	action func(to leave.Status) comment.Action
}

func fixed(a comment.Action) func(leave.Status) comment.Action {
	return func(leave.Status) comment.Action { return a }
}

var operations = []operation{
	{
		name: "approve",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.Approve(auth, comment.NoText(), today)
		},
		action: func(to leave.Status) comment.Action {
			if to == leave.StatusTemporaryAllowed {
				return comment.ActionTemporaryAllowed
			}
			return comment.ActionAllowed
		},
	},
	{
		name: "reject",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.Reject(auth, comment.NoText(), today)
		},
		action: fixed(comment.ActionRejected),
	},
	{
		name: "cancel",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.Cancel(auth, comment.NoText(), today)
		},
		action: func(to leave.Status) comment.Action {
			switch to {
			case leave.StatusRevoked:
				return comment.ActionRevoked
			case leave.StatusAllowedCancellationRequested:
				return comment.ActionCancelRequested
			}
			return comment.ActionCancelled
		},
	},
	{
		name: "direct cancel",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.DirectCancel(auth, comment.NoText(), today)
		},
		action: fixed(comment.ActionCancelledDirectly),
	},
	{
		name: "decline cancellation",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.DeclineCancellationRequest(auth, comment.NoText(), today)
		},
		action: fixed(comment.ActionCancelRequestedDeclined),
	},
	{
		name: "edit",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			edited := app
			edited.EndDate = day(2026, 4, 9)
			return app.Edit(edited, auth, comment.NoText(), today)
		},
		action: fixed(comment.ActionEdited),
	},
	{
		name: "remind",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.Remind(auth, today)
		},
	},
	{
		name: "refer",
		run: func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.Refer(auth, person.Person{ID: strangerID, FirstName: "Dana", LastName: "Fox"})
		},
		action: fixed(comment.ActionReferred),
	},
}

func TestApplication_TransitionsFollowStatusGraph(t *testing.T) {
	for _, from := range allStatuses {
		for _, op := range operations {
			for _, a := range authorities {
				for _, twoStage := range []bool{false, true} {
					name := fmt.Sprintf("%s/%s/%s/two_stage=%v", from, op.name, a.name, twoStage)
					t.Run(name, func(t *testing.T) {
						app := withStatus(from)
						app.TwoStageApproval = twoStage

						tr, err := op.run(app, a.auth)
						if err != nil || tr.IsNoop() {
							return
						}
						to := tr.Application.Status

						require.NoError(t, leave.ValidateStatusChange(from, to))

						if to == from {
							if op.action == nil {
								assert.Nil(t, tr.Comment)
								return
							}
							require.NotNil(t, tr.Comment)
							assert.Equal(t, op.action(to), tr.Comment.Action)
							return
						}
						require.NotNil(t, tr.Comment)
						assert.Equal(t, op.action(to), tr.Comment.Action)
						assert.Equal(t, a.auth.ActorID, tr.Comment.AuthorID)
					})
				}
			}
		}
	}
}

func TestApplication_CreationsFollowStatusGraph(t *testing.T) {
	creations := []struct {
		name   string
		run    func(app leave.Application, auth leave.Authority) (leave.Transition, error)
		action comment.Action
	}{
		{"submit", func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.Submit(auth, comment.NoText(), today)
		}, comment.ActionApplied},
		{"direct allow", func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.DirectAllow(auth, comment.NoText(), today)
		}, comment.ActionAllowedDirectly},
		{"convert", func(app leave.Application, auth leave.Authority) (leave.Transition, error) {
			return app.ConvertFromSickLeave(auth, comment.NoText(), today)
		}, comment.ActionConverted},
	}

	for _, c := range creations {
		for _, a := range authorities {
			t.Run(c.name+"/"+a.name, func(t *testing.T) {
				app := waiting()
				app.ID = 0
				app.Status = ""

				tr, err := c.run(app, a.auth)
				if err != nil {
					return
				}
				require.NoError(t, leave.ValidateStatusChange("", tr.Application.Status))
				require.NotNil(t, tr.Comment)
				assert.Equal(t, c.action, tr.Comment.Action)
			})
		}
	}
}

func TestValidateStatusChange(t *testing.T) {
	tests := []struct {
		from, to leave.Status
		ok       bool
	}{
		{"", leave.StatusWaiting, true},
		{"", leave.StatusAllowed, true},
		{"", leave.StatusTemporaryAllowed, false},
		{leave.StatusWaiting, leave.StatusWaiting, true},
		{leave.StatusWaiting, leave.StatusTemporaryAllowed, true},
		{leave.StatusWaiting, leave.StatusAllowedCancellationRequested, false},
		{leave.StatusTemporaryAllowed, leave.StatusWaiting, false},
		{leave.StatusAllowed, leave.StatusRejected, false},
		{leave.StatusAllowed, leave.StatusRevoked, false},
		{leave.StatusAllowedCancellationRequested, leave.StatusAllowed, true},
		{leave.StatusRejected, leave.StatusAllowed, false},
		{leave.StatusCancelled, leave.StatusWaiting, false},
		{leave.StatusRevoked, leave.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q->%q", tt.from, tt.to), func(t *testing.T) {
			err := leave.ValidateStatusChange(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		})
	}
}
