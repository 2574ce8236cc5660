package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-leave/internal/comment"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/person"
	personerrors "go-leave/internal/person/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveRepository struct {
	createFn            func(ctx context.Context, app *leave.Application) error
	findByIDFn          func(ctx context.Context, id int64) (*leave.Application, error)
	findAllByPersonFn   func(ctx context.Context, personID int64, limit, offset int) ([]leave.Application, int64, error)
	updateFn            func(ctx context.Context, app *leave.Application) error
	deleteAllByPersonFn func(ctx context.Context, personID int64) error
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, app *leave.Application) error {
	if f.createFn != nil {
		return f.createFn(ctx, app)
	}
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id int64) (*leave.Application, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, leaveerrors.ErrLeaveNotFound
}

func (f *fakeLeaveRepository) FindAllByPerson(ctx context.Context, personID int64, limit, offset int) ([]leave.Application, int64, error) {
	if f.findAllByPersonFn != nil {
		return f.findAllByPersonFn(ctx, personID, limit, offset)
	}
	return nil, 0, nil
}

func (f *fakeLeaveRepository) Update(ctx context.Context, app *leave.Application) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, app)
	}
	app.Version++
	return nil
}

func (f *fakeLeaveRepository) DeleteAllByPerson(ctx context.Context, personID int64) error {
	if f.deleteAllByPersonFn != nil {
		return f.deleteAllByPersonFn(ctx, personID)
	}
	return nil
}

type fakeCommentRepository struct {
	created         []comment.AuditComment
	comments        []comment.AuditComment
	createErr       error
	calls           []string
	reattributedFor int64
}

func (f *fakeCommentRepository) WithTx(tx *sql.Tx) comment.Repository {
	return f
}

func (f *fakeCommentRepository) Create(ctx context.Context, c *comment.AuditComment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *c)
	return nil
}

func (f *fakeCommentRepository) FindByApplication(ctx context.Context, applicationID int64) ([]comment.AuditComment, error) {
	return f.comments, nil
}

func (f *fakeCommentRepository) DeleteByApplicationPerson(ctx context.Context, personID int64) error {
	f.calls = append(f.calls, "delete comments")
	return nil
}

func (f *fakeCommentRepository) ReattributeAuthor(ctx context.Context, personID int64, replacementID *int64) error {
	f.calls = append(f.calls, "reattribute")
	f.reattributedFor = personID
	return nil
}

type fakePersonRepository struct {
	people map[int64]person.Person
}

func (f *fakePersonRepository) FindByID(ctx context.Context, id int64) (*person.Person, error) {
	p, ok := f.people[id]
	if !ok {
		return nil, personerrors.ErrPersonNotFound
	}
	return &p, nil
}

func (f *fakePersonRepository) FindByIDs(ctx context.Context, ids []int64) ([]person.Person, error) {
	var out []person.Person
	for _, id := range ids {
		if p, ok := f.people[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePersonRepository) FindActiveByRole(ctx context.Context, role person.Role) ([]person.Person, error) {
	return nil, nil
}

type fakeOrganization struct {
	heads       map[int64]int64
	authorities map[int64]int64
	twoStage    bool
	err         error
}

func (f *fakeOrganization) IsDepartmentHeadOf(ctx context.Context, head, member person.Person) (bool, error) {
	return f.heads[member.ID] == head.ID && head.ID != 0, f.err
}

func (f *fakeOrganization) IsSecondStageAuthorityOf(ctx context.Context, authority, member person.Person) (bool, error) {
	return f.authorities[member.ID] == authority.ID && authority.ID != 0, f.err
}

func (f *fakeOrganization) IsTwoStageApprovalActive(ctx context.Context, member person.Person) (bool, error) {
	return f.twoStage, nil
}

type fakeDispatcher struct {
	calls   int
	actorID int64
	app     leave.Application
	effects []leave.Effect
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, app leave.Application, actorID int64, effects []leave.Effect) {
	f.calls++
	f.app = app
	f.actorID = actorID
	f.effects = effects
}

type leaveServiceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	service    leave.Service
	repo       *fakeLeaveRepository
	comments   *fakeCommentRepository
	org        *fakeOrganization
	dispatcher *fakeDispatcher
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	persons := &fakePersonRepository{people: map[int64]person.Person{
		requesterID: {ID: requesterID, Username: "alice", Roles: []person.Role{person.RoleUser}},
		headID:      {ID: headID, Username: "hank", Roles: []person.Role{person.RoleUser, person.RoleDepartmentHead}},
		authorityID: {ID: authorityID, Username: "sara", Roles: []person.Role{person.RoleUser, person.RoleSecondStageAuthority}},
		bossID:      {ID: bossID, Username: "bob", Roles: []person.Role{person.RoleUser, person.RoleBoss}},
		officeID:    {ID: officeID, Username: "olga", Roles: []person.Role{person.RoleUser, person.RoleOffice}},
		20:          {ID: 20, Username: "rita"},
		30:          {ID: 30, Username: "dora", FirstName: "Dora"},
	}}
	deps := &leaveServiceDeps{
		db:         db,
		sqlMock:    sqlMock,
		repo:       &fakeLeaveRepository{},
		comments:   &fakeCommentRepository{},
		org:        &fakeOrganization{heads: map[int64]int64{requesterID: headID}, authorities: map[int64]int64{requesterID: authorityID}},
		dispatcher: &fakeDispatcher{},
	}
	deps.service = leave.NewService(
		db, deps.repo, deps.comments, persons, deps.org, deps.dispatcher,
		leave.WithClock(func() time.Time { return today }),
	)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func stored(app leave.Application) func(ctx context.Context, id int64) (*leave.Application, error) {
	return func(ctx context.Context, id int64) (*leave.Application, error) {
		if id != app.ID {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		cp := app
		return &cp, nil
	}
}

func submitRequest() leave.SubmitLeaveRequest {
	return leave.SubmitLeaveRequest{
		PersonID:            requesterID,
		StartDate:           "2026-04-06",
		EndDate:             "2026-04-10",
		HolidayReplacements: []leave.HolidayReplacementRequest{{PersonID: 20}},
	}
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.org.twoStage = true
		expectTx(t, deps.sqlMock, true)

		deps.repo.createFn = func(ctx context.Context, app *leave.Application) error {
			assert.Equal(t, leave.StatusWaiting, app.Status)
			assert.True(t, app.TwoStageApproval)
			assert.Equal(t, leave.DayLengthFull, app.DayLength)
			app.ID = 77
			return nil
		}

		text := "summer"
		req := submitRequest()
		req.Comment = &text
		resp, err := deps.service.Submit(ctx, "1", req)

		require.NoError(t, err)
		assert.Equal(t, int64(77), resp.ID)
		assert.Equal(t, "WAITING", resp.Status)
		assert.Equal(t, "2026-03-10", resp.ApplicationDate)
		require.Len(t, deps.comments.created, 1)
		c := deps.comments.created[0]
		assert.Equal(t, int64(77), c.ApplicationID)
		assert.Equal(t, comment.ActionApplied, c.Action)
		assert.Equal(t, "summer", *c.Text)
		assert.Equal(t, requesterID, *c.AuthorID)
		assert.Equal(t, 1, deps.dispatcher.calls)
		assert.Equal(t, int64(77), deps.dispatcher.app.ID)
		assert.Equal(t, requesterID, deps.dispatcher.actorID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(r *leave.SubmitLeaveRequest)
			want   error
		}{
			{"bad date", func(r *leave.SubmitLeaveRequest) { r.StartDate = "06.04.2026" }, leaveerrors.ErrInvalidDateFormat},
			{"reversed range", func(r *leave.SubmitLeaveRequest) { r.StartDate = "2026-04-11" }, leaveerrors.ErrInvalidDateRange},
			{"half day over several days", func(r *leave.SubmitLeaveRequest) { r.DayLength = "MORNING" }, leaveerrors.ErrHalfDayNotSingleDay},
			{"replacement is requester", func(r *leave.SubmitLeaveRequest) {
				r.HolidayReplacements = []leave.HolidayReplacementRequest{{PersonID: requesterID}}
			}, leaveerrors.ErrInvalidHolidayReplacement},
			{"duplicate replacement", func(r *leave.SubmitLeaveRequest) {
				r.HolidayReplacements = []leave.HolidayReplacementRequest{{PersonID: 20}, {PersonID: 20}}
			}, leaveerrors.ErrInvalidHolidayReplacement},
			{"unknown replacement", func(r *leave.SubmitLeaveRequest) {
				r.HolidayReplacements = []leave.HolidayReplacementRequest{{PersonID: 999}}
			}, leaveerrors.ErrInvalidHolidayReplacement},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				deps := setupLeaveServiceTest(t)
				req := submitRequest()
				tt.mutate(&req)

				_, err := deps.service.Submit(ctx, "1", req)

				assert.ErrorIs(t, err, tt.want)
				assert.Equal(t, 0, deps.dispatcher.calls)
				assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
			})
		}
	})

	t.Run("invalid actor", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Submit(ctx, "abc", submitRequest())
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidActorID)

		_, err = deps.service.Submit(ctx, "404", submitRequest())
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidActorID)
	})

	t.Run("not allowed for stranger", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Submit(ctx, "20", submitRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrNotAuthorized)
		assert.Equal(t, 0, deps.dispatcher.calls)
	})

	t.Run("comment failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.comments.createErr = errors.New("insert failed")

		_, err := deps.service.Submit(ctx, "1", submitRequest())

		assert.EqualError(t, err, "insert failed")
		assert.Equal(t, 0, deps.dispatcher.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_DirectAllow(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.DirectAllow(context.Background(), "5", submitRequest())

	require.NoError(t, err)
	assert.Equal(t, "ALLOWED", resp.Status)
	assert.Equal(t, officeID, resp.ApplierID)
	assert.Equal(t, comment.ActionAllowedDirectly, deps.comments.created[0].Action)
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = stored(waiting())

		var updated leave.Application
		deps.repo.updateFn = func(ctx context.Context, app *leave.Application) error {
			updated = *app
			app.Version++
			return nil
		}

		resp, err := deps.service.Approve(ctx, "4", "10", leave.DecisionRequest{})

		require.NoError(t, err)
		assert.Equal(t, "ALLOWED", resp.Status)
		assert.Equal(t, 1, resp.Version)
		assert.Equal(t, leave.StatusAllowed, updated.Status)
		require.Len(t, deps.comments.created, 1)
		assert.Nil(t, deps.comments.created[0].Text)
		assert.Equal(t, bossID, deps.dispatcher.actorID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repeated approval writes nothing", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = stored(withStatus(leave.StatusAllowed))
		deps.repo.updateFn = func(ctx context.Context, app *leave.Application) error {
			t.Fatal("update must not be called")
			return nil
		}

		resp, err := deps.service.Approve(ctx, "4", "10", leave.DecisionRequest{})

		require.NoError(t, err)
		assert.Equal(t, "ALLOWED", resp.Status)
		assert.Empty(t, deps.comments.created)
		assert.Equal(t, 0, deps.dispatcher.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("two stage by department head", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		app := waiting()
		app.TwoStageApproval = true
		deps.repo.findByIDFn = stored(app)

		resp, err := deps.service.Approve(ctx, "2", "10", leave.DecisionRequest{})

		require.NoError(t, err)
		assert.Equal(t, "TEMPORARY_ALLOWED", resp.Status)
		assert.Equal(t, comment.ActionTemporaryAllowed, deps.comments.created[0].Action)
	})

	t.Run("requester cannot approve", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = stored(waiting())

		_, err := deps.service.Approve(ctx, "1", "10", leave.DecisionRequest{})

		assert.ErrorIs(t, err, leaveerrors.ErrNotAuthorized)
		assert.Equal(t, 0, deps.dispatcher.calls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("concurrent modification", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = stored(waiting())
		deps.repo.updateFn = func(ctx context.Context, app *leave.Application) error {
			return leaveerrors.ErrConcurrentModification
		}

		_, err := deps.service.Approve(ctx, "4", "10", leave.DecisionRequest{})

		assert.ErrorIs(t, err, leaveerrors.ErrConcurrentModification)
		assert.Empty(t, deps.comments.created)
		assert.Equal(t, 0, deps.dispatcher.calls)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, "4", "11", leave.DecisionRequest{})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Approve(ctx, "4", "x", leave.DecisionRequest{})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("org lookup error", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = stored(waiting())
		deps.org.err = errors.New("redis down")

		_, err := deps.service.Approve(ctx, "4", "10", leave.DecisionRequest{})

		assert.EqualError(t, err, "redis down")
	})
}

func TestLeaveService_CancelRequestedByRequester(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	expectTx(t, deps.sqlMock, true)
	deps.repo.findByIDFn = stored(withStatus(leave.StatusAllowed))

	text := "plans changed"
	resp, err := deps.service.Cancel(context.Background(), "1", "10", leave.DecisionRequest{Comment: &text})

	require.NoError(t, err)
	assert.Equal(t, "ALLOWED_CANCELLATION_REQUESTED", resp.Status)
	require.NotNil(t, resp.CancelDate)
	assert.Equal(t, "2026-03-10", *resp.CancelDate)
	assert.Equal(t, comment.ActionCancelRequested, deps.comments.created[0].Action)
	assert.Equal(t, "plans changed", *deps.comments.created[0].Text)
}

func TestLeaveService_Remind(t *testing.T) {
	t.Run("success records no comment", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = stored(waiting())

		resp, err := deps.service.Remind(context.Background(), "1", "10")

		require.NoError(t, err)
		require.NotNil(t, resp.RemindDate)
		assert.Equal(t, "2026-03-10", *resp.RemindDate)
		assert.Empty(t, deps.comments.created)
		assert.Equal(t, 1, deps.dispatcher.calls)
	})

	t.Run("already sent today", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		app := waiting()
		sent := day(2026, 3, 10)
		app.RemindDate = &sent
		deps.repo.findByIDFn = stored(app)

		_, err := deps.service.Remind(context.Background(), "1", "10")

		assert.ErrorIs(t, err, leaveerrors.ErrRemindAlreadySentToday)
	})
}

func TestLeaveService_Edit(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	expectTx(t, deps.sqlMock, true)
	deps.repo.findByIDFn = stored(waiting())

	resp, err := deps.service.Edit(context.Background(), "1", "10", leave.EditLeaveRequest{
		PersonID:  requesterID,
		StartDate: "2026-04-07",
		EndDate:   "2026-04-07",
		DayLength: "NOON",
	})

	require.NoError(t, err)
	assert.Equal(t, "2026-04-07", resp.StartDate)
	assert.Equal(t, "NOON", resp.DayLength)
	assert.Empty(t, resp.HolidayReplacements)
	assert.Equal(t, comment.ActionEdited, deps.comments.created[0].Action)
}

func TestLeaveService_Refer(t *testing.T) {
	t.Run("stores delegate name", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = stored(waiting())

		_, err := deps.service.Refer(context.Background(), "2", "10", leave.ReferLeaveRequest{PersonID: 30})

		require.NoError(t, err)
		assert.Equal(t, comment.ActionReferred, deps.comments.created[0].Action)
		assert.Equal(t, "Dora", *deps.comments.created[0].Text)
	})

	t.Run("unknown delegate", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Refer(context.Background(), "2", "10", leave.ReferLeaveRequest{PersonID: 999})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidPersonID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_GetComments(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	deps.repo.findByIDFn = stored(waiting())
	author := requesterID
	deps.comments.comments = []comment.AuditComment{
		{ID: 1, ApplicationID: 10, Action: comment.ActionApplied, AuthorID: &author, CreatedAt: today},
	}

	resp, err := deps.service.GetComments(context.Background(), "10")

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "APPLIED", resp[0].Action)
	assert.Equal(t, "2026-03-10T09:30:00Z", resp[0].CreatedAt)
}

func TestLeaveService_DeleteAllByPerson(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.deleteAllByPersonFn = func(ctx context.Context, personID int64) error {
			assert.Equal(t, []string{"delete comments", "reattribute"}, deps.comments.calls)
			assert.Equal(t, int64(9), personID)
			return nil
		}

		err := deps.service.DeleteAllByPerson(context.Background(), 9)

		require.NoError(t, err)
		assert.Equal(t, int64(9), deps.comments.reattributedFor)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repository error rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.deleteAllByPersonFn = func(ctx context.Context, personID int64) error {
			return errors.New("delete failed")
		}

		err := deps.service.DeleteAllByPerson(context.Background(), 9)

		assert.EqualError(t, err, "delete failed")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_ListByPerson(t *testing.T) {
	ctx := context.Background()

	t.Run("department head lists member", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.findAllByPersonFn = func(ctx context.Context, personID int64, limit, offset int) ([]leave.Application, int64, error) {
			assert.Equal(t, requesterID, personID)
			assert.Equal(t, 5, limit)
			assert.Equal(t, 5, offset)
			return []leave.Application{waiting()}, 6, nil
		}

		resp, total, err := deps.service.ListByPerson(ctx, "2", "1", 2, 5)

		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
		require.Len(t, resp, 1)
		assert.Equal(t, int64(10), resp[0].ID)
	})

	t.Run("unrelated person is rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, _, err := deps.service.ListByPerson(ctx, "20", "1", 1, 10)

		assert.ErrorIs(t, err, leaveerrors.ErrNotAuthorized)
	})
}
