package leave

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"go-leave/internal/comment"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/person"
	personerrors "go-leave/internal/person/errors"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// EffectDispatcher applies the effects of a committed transition. It must not
// fail the operation that produced them.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, app Application, actorID int64, effects []Effect)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error)
	DirectAllow(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error)
	ConvertFromSickLeave(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	GetComments(ctx context.Context, id string) ([]CommentResponse, error)
	ListByPerson(ctx context.Context, actorID, personID string, page, pageSize int) ([]LeaveResponse, int64, error)
	Edit(ctx context.Context, actorID, id string, req EditLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error)
	Reject(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error)
	DirectCancel(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error)
	DeclineCancellationRequest(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error)
	Remind(ctx context.Context, actorID, id string) (LeaveResponse, error)
	Refer(ctx context.Context, actorID, id string, req ReferLeaveRequest) (LeaveResponse, error)
	DeleteAllByPerson(ctx context.Context, personID int64) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	comments   comment.Repository
	persons    person.Repository
	org        Organization
	dispatcher EffectDispatcher
	now        func() time.Time
	logger     *zap.Logger
}

type Option func(*service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger.Named("leave.service")
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(
	db *sql.DB,
	repo Repository,
	comments comment.Repository,
	persons person.Repository,
	org Organization,
	dispatcher EffectDispatcher,
	opts ...Option,
) Service {
	s := &service{
		db:         db,
		repo:       repo,
		comments:   comments,
		persons:    persons,
		org:        org,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     zap.L().Named("leave.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type creation func(draft Application, auth Authority, text comment.Text, now time.Time) (Transition, error)

func (s *service) Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error) {
	return s.create(ctx, "submit", actorID, req, Application.Submit)
}

func (s *service) DirectAllow(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error) {
	return s.create(ctx, "direct allow", actorID, req, Application.DirectAllow)
}

func (s *service) ConvertFromSickLeave(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error) {
	return s.create(ctx, "convert", actorID, req, Application.ConvertFromSickLeave)
}

func (s *service) create(ctx context.Context, op, actorID string, req SubmitLeaveRequest, fn creation) (LeaveResponse, error) {
	s.logger.Debug(op+" leave requested",
		zap.String("actor_id", actorID),
		zap.Int64("person_id", req.PersonID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	actorPK, err := parseID(actorID, leaveerrors.ErrInvalidActorID)
	if err != nil {
		return LeaveResponse{}, err
	}
	draft, err := s.buildApplication(ctx, req.PersonID, req.StartDate, req.EndDate, req.DayLength, req.HolidayReplacements)
	if err != nil {
		s.logger.Warn(op+" leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	actor, subject, err := s.loadParties(ctx, actorPK, draft.PersonID)
	if err != nil {
		return LeaveResponse{}, err
	}
	auth, err := ResolveAuthority(ctx, s.org, actor, subject)
	if err != nil {
		s.logger.Error(op+" leave resolve authority failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	draft.TwoStageApproval, err = s.org.IsTwoStageApprovalActive(ctx, subject)
	if err != nil {
		s.logger.Error(op+" leave two stage lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	t, err := fn(draft, auth, comment.TextFrom(req.Comment), s.now())
	if err != nil {
		s.logger.Warn(op+" leave rejected",
			zap.Int64("actor_id", actorPK),
			zap.Int64("person_id", draft.PersonID),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if err := ValidateStatusChange("", t.Application.Status); err != nil {
		s.logger.Error(op+" leave produced illegal status",
			zap.String("to_status", string(t.Application.Status)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error(op+" leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	app := t.Application
	if err := s.repo.WithTx(tx).Create(ctx, &app); err != nil {
		s.logger.Error(op+" leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.persistComment(ctx, tx, app.ID, t.Comment); err != nil {
		s.logger.Error(op+" leave persist comment failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error(op+" leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info(op+" leave success",
		zap.Int64("leave_id", app.ID),
		zap.Int64("person_id", app.PersonID),
		zap.String("status", string(app.Status)),
	)

	s.dispatch(ctx, app, actorPK, t.Effects)
	return mapToResponse(app), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	pk, err := parseID(id, leaveerrors.ErrInvalidLeaveID)
	if err != nil {
		return LeaveResponse{}, err
	}
	app, err := s.repo.FindByID(ctx, pk)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*app), nil
}

func (s *service) GetComments(ctx context.Context, id string) ([]CommentResponse, error) {
	pk, err := parseID(id, leaveerrors.ErrInvalidLeaveID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, pk); err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByApplication(ctx, pk)
	if err != nil {
		s.logger.Error("get leave comments failed", zap.Int64("leave_id", pk), zap.Error(err))
		return nil, err
	}
	return mapToCommentResponses(comments), nil
}

// ListByPerson is open to the person and to whoever may act on their behalf.
func (s *service) ListByPerson(ctx context.Context, actorID, personID string, page, pageSize int) ([]LeaveResponse, int64, error) {
	actorPK, err := parseID(actorID, leaveerrors.ErrInvalidActorID)
	if err != nil {
		return nil, 0, err
	}
	subjectPK, err := parseID(personID, leaveerrors.ErrInvalidPersonID)
	if err != nil {
		return nil, 0, err
	}

	actor, subject, err := s.loadParties(ctx, actorPK, subjectPK)
	if err != nil {
		return nil, 0, err
	}
	auth, err := ResolveAuthority(ctx, s.org, actor, subject)
	if err != nil {
		s.logger.Error("list leaves resolve authority failed", zap.Error(err))
		return nil, 0, err
	}
	if !auth.IsSelf() && !auth.CanActOnBehalf() {
		s.logger.Warn("list leaves rejected", zap.Int64("actor_id", actorPK), zap.Int64("person_id", subjectPK))
		return nil, 0, leaveerrors.ErrNotAuthorized
	}

	apps, total, err := s.repo.FindAllByPerson(ctx, subjectPK, pageSize, (page-1)*pageSize)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Int64("person_id", subjectPK), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]LeaveResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, mapToResponse(app))
	}
	return resp, total, nil
}

func (s *service) Edit(ctx context.Context, actorID, id string, req EditLeaveRequest) (LeaveResponse, error) {
	edited, err := s.buildApplication(ctx, req.PersonID, req.StartDate, req.EndDate, req.DayLength, req.HolidayReplacements)
	if err != nil {
		s.logger.Warn("edit leave validation failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	text := comment.TextFrom(req.Comment)
	return s.transition(ctx, "edit", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.Edit(edited, auth, text, s.now())
	})
}

func (s *service) Approve(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error) {
	text := comment.TextFrom(req.Comment)
	return s.transition(ctx, "approve", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.Approve(auth, text, s.now())
	})
}

func (s *service) Reject(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error) {
	text := comment.TextFrom(req.Comment)
	return s.transition(ctx, "reject", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.Reject(auth, text, s.now())
	})
}

func (s *service) Cancel(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error) {
	text := comment.TextFrom(req.Comment)
	return s.transition(ctx, "cancel", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.Cancel(auth, text, s.now())
	})
}

func (s *service) DirectCancel(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error) {
	text := comment.TextFrom(req.Comment)
	return s.transition(ctx, "direct cancel", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.DirectCancel(auth, text, s.now())
	})
}

func (s *service) DeclineCancellationRequest(ctx context.Context, actorID, id string, req DecisionRequest) (LeaveResponse, error) {
	text := comment.TextFrom(req.Comment)
	return s.transition(ctx, "decline cancellation", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.DeclineCancellationRequest(auth, text, s.now())
	})
}

func (s *service) Remind(ctx context.Context, actorID, id string) (LeaveResponse, error) {
	return s.transition(ctx, "remind", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.Remind(auth, s.now())
	})
}

func (s *service) Refer(ctx context.Context, actorID, id string, req ReferLeaveRequest) (LeaveResponse, error) {
	delegate, err := s.persons.FindByID(ctx, req.PersonID)
	if err != nil {
		if errors.Is(err, personerrors.ErrPersonNotFound) {
			return LeaveResponse{}, leaveerrors.ErrInvalidPersonID
		}
		return LeaveResponse{}, err
	}
	return s.transition(ctx, "refer", actorID, id, func(app Application, auth Authority) (Transition, error) {
		return app.Refer(auth, *delegate)
	})
}

// transition runs one state machine operation on a stored application. The
// application and its comment commit together; effects are dispatched after
// the commit and never fail the call.
func (s *service) transition(
	ctx context.Context,
	op, actorID, id string,
	fn func(app Application, auth Authority) (Transition, error),
) (LeaveResponse, error) {
	s.logger.Debug(op+" leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
	)

	actorPK, err := parseID(actorID, leaveerrors.ErrInvalidActorID)
	if err != nil {
		return LeaveResponse{}, err
	}
	pk, err := parseID(id, leaveerrors.ErrInvalidLeaveID)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error(op+" leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	current, err := qtx.FindByID(ctx, pk)
	if err != nil {
		return LeaveResponse{}, err
	}

	actor, subject, err := s.loadParties(ctx, actorPK, current.PersonID)
	if err != nil {
		return LeaveResponse{}, err
	}
	auth, err := ResolveAuthority(ctx, s.org, actor, subject)
	if err != nil {
		s.logger.Error(op+" leave resolve authority failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	t, err := fn(*current, auth)
	if err != nil {
		s.logger.Warn(op+" leave rejected",
			zap.Int64("leave_id", pk),
			zap.Int64("actor_id", actorPK),
			zap.String("status", string(current.Status)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if t.IsNoop() {
		s.logger.Info(op+" leave unchanged",
			zap.Int64("leave_id", pk),
			zap.String("status", string(current.Status)),
		)
		return mapToResponse(*current), nil
	}

	if err := ValidateStatusChange(current.Status, t.Application.Status); err != nil {
		s.logger.Error(op+" leave produced illegal status",
			zap.Int64("leave_id", pk),
			zap.String("from_status", string(current.Status)),
			zap.String("to_status", string(t.Application.Status)),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	app := t.Application
	if err := qtx.Update(ctx, &app); err != nil {
		s.logger.Error(op+" leave persist failed", zap.Int64("leave_id", pk), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.persistComment(ctx, tx, app.ID, t.Comment); err != nil {
		s.logger.Error(op+" leave persist comment failed", zap.Int64("leave_id", pk), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error(op+" leave commit failed", zap.Int64("leave_id", pk), zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info(op+" leave success",
		zap.Int64("leave_id", pk),
		zap.String("from_status", string(current.Status)),
		zap.String("to_status", string(app.Status)),
	)

	s.dispatch(ctx, app, actorPK, t.Effects)
	return mapToResponse(app), nil
}

// DeleteAllByPerson erases the applications of personID together with their
// comments and detaches the person from comments written elsewhere.
func (s *service) DeleteAllByPerson(ctx context.Context, personID int64) error {
	s.logger.Debug("delete leaves of person requested", zap.Int64("person_id", personID))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete leaves of person begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	cqtx := s.comments.WithTx(tx)
	if err := cqtx.DeleteByApplicationPerson(ctx, personID); err != nil {
		s.logger.Error("delete comments of person failed", zap.Int64("person_id", personID), zap.Error(err))
		return err
	}
	if err := cqtx.ReattributeAuthor(ctx, personID, nil); err != nil {
		s.logger.Error("reattribute comments of person failed", zap.Int64("person_id", personID), zap.Error(err))
		return err
	}
	if err := s.repo.WithTx(tx).DeleteAllByPerson(ctx, personID); err != nil {
		s.logger.Error("delete leaves of person failed", zap.Int64("person_id", personID), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leaves of person commit failed", zap.Error(err))
		return err
	}
	s.logger.Info("delete leaves of person success", zap.Int64("person_id", personID))
	return nil
}

func (s *service) persistComment(ctx context.Context, tx *sql.Tx, applicationID int64, draft *CommentDraft) error {
	if draft == nil {
		return nil
	}
	authorID := draft.AuthorID
	return s.comments.WithTx(tx).Create(ctx, &comment.AuditComment{
		ApplicationID: applicationID,
		Action:        draft.Action,
		Text:          draft.Text.Ptr(),
		AuthorID:      &authorID,
		CreatedAt:     s.now().UTC(),
	})
}

func (s *service) dispatch(ctx context.Context, app Application, actorID int64, effects []Effect) {
	if s.dispatcher == nil || len(effects) == 0 {
		return
	}
	s.dispatcher.Dispatch(context.WithoutCancel(ctx), app, actorID, effects)
}

func (s *service) loadParties(ctx context.Context, actorID, subjectID int64) (person.Person, person.Person, error) {
	actor, err := s.persons.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, personerrors.ErrPersonNotFound) {
			return person.Person{}, person.Person{}, leaveerrors.ErrInvalidActorID
		}
		return person.Person{}, person.Person{}, err
	}
	if actorID == subjectID {
		return *actor, *actor, nil
	}
	subject, err := s.persons.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, personerrors.ErrPersonNotFound) {
			return person.Person{}, person.Person{}, leaveerrors.ErrInvalidPersonID
		}
		return person.Person{}, person.Person{}, err
	}
	return *actor, *subject, nil
}

func (s *service) buildApplication(
	ctx context.Context,
	personID int64,
	start, end, dayLength string,
	replacements []HolidayReplacementRequest,
) (Application, error) {
	if personID <= 0 {
		return Application{}, leaveerrors.ErrInvalidPersonID
	}
	startDate, err := parseDate(start)
	if err != nil {
		return Application{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return Application{}, err
	}
	if startDate.After(endDate) {
		return Application{}, leaveerrors.ErrInvalidDateRange
	}

	length := DayLengthFull
	if dayLength != "" {
		length = DayLength(dayLength)
	}
	if !length.IsValid() {
		return Application{}, leaveerrors.ErrInvalidDayLength
	}
	if (length == DayLengthMorning || length == DayLengthNoon) && !startDate.Equal(endDate) {
		return Application{}, leaveerrors.ErrHalfDayNotSingleDay
	}

	hr, err := replacementsFrom(personID, replacements)
	if err != nil {
		return Application{}, err
	}

	app := Application{
		PersonID:            personID,
		StartDate:           startDate,
		EndDate:             endDate,
		DayLength:           length,
		HolidayReplacements: hr,
	}
	if err := s.validateReplacements(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

func replacementsFrom(personID int64, replacements []HolidayReplacementRequest) ([]HolidayReplacement, error) {
	result := make([]HolidayReplacement, 0, len(replacements))
	seen := make(map[int64]bool, len(replacements))
	for _, r := range replacements {
		if r.PersonID <= 0 || r.PersonID == personID || seen[r.PersonID] {
			return nil, leaveerrors.ErrInvalidHolidayReplacement
		}
		seen[r.PersonID] = true
		result = append(result, HolidayReplacement{PersonID: r.PersonID, Note: r.Note})
	}
	return result, nil
}

// validateReplacements checks that every holiday replacement is a known person.
func (s *service) validateReplacements(ctx context.Context, app Application) error {
	ids := app.ReplacementIDs()
	if len(ids) == 0 {
		return nil
	}
	found, err := s.persons.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return leaveerrors.ErrInvalidHolidayReplacement
	}
	return nil
}

func parseID(v string, invalid error) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}

func mapToResponse(a Application) LeaveResponse {
	resp := LeaveResponse{
		ID:                  a.ID,
		PersonID:            a.PersonID,
		ApplierID:           a.ApplierID,
		StartDate:           a.StartDate.Format(dateLayout),
		EndDate:             a.EndDate.Format(dateLayout),
		DayLength:           string(a.DayLength),
		Status:              string(a.Status),
		TwoStageApproval:    a.TwoStageApproval,
		BossID:              a.BossID,
		CancellerID:         a.CancellerID,
		ApplicationDate:     a.ApplicationDate.Format(dateLayout),
		EditedDate:          formatDate(a.EditedDate),
		CancelDate:          formatDate(a.CancelDate),
		RemindDate:          formatDate(a.RemindDate),
		HolidayReplacements: make([]HolidayReplacementResponse, 0, len(a.HolidayReplacements)),
		Version:             a.Version,
	}
	for _, r := range a.HolidayReplacements {
		resp.HolidayReplacements = append(resp.HolidayReplacements, HolidayReplacementResponse{
			PersonID: r.PersonID,
			Note:     r.Note,
		})
	}
	return resp
}

func mapToCommentResponses(comments []comment.AuditComment) []CommentResponse {
	resp := make([]CommentResponse, len(comments))
	for i, c := range comments {
		resp[i] = CommentResponse{
			ID:        c.ID,
			Action:    string(c.Action),
			Text:      c.Text,
			AuthorID:  c.AuthorID,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp
}
