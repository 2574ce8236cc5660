package notification

import (
	"context"
	"strconv"
	"time"

	"go-leave/internal/comment"
	"go-leave/internal/events"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/person"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

const TechnicalErrorKind = "technical_error"

// Notice carries what every notification needs. Target is the single
// addressee for replacement and referral notices.
type Notice struct {
	Application leave.Application
	ActorID     int64
	Target      int64
	Text        comment.Text
}

// Organization resolves the deciders of a person.
type Organization interface {
	DepartmentHeadsOf(ctx context.Context, member person.Person) ([]person.Person, error)
	SecondStageAuthoritiesOf(ctx context.Context, member person.Person) ([]person.Person, error)
}

type Config struct {
	ApplicationURL     string
	TechnicalRecipient string
}

// Service turns notices into mail requests stored in the outbox. Every
// recipient gets its own event.
type Service struct {
	persons person.Repository
	org     Organization
	outbox  kafka.OutboxRepository
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(
	persons person.Repository,
	org Organization,
	outbox kafka.OutboxRepository,
	cfg Config,
	logger ...*zap.Logger,
) *Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &Service{
		persons: persons,
		org:     org,
		outbox:  outbox,
		cfg:     cfg,
		now:     time.Now,
		logger:  l,
	}
}

type parties struct {
	requester person.Person
	actor     person.Person
	target    person.Person
}

type recipientsFunc func(ctx context.Context, p parties) ([]person.Person, error)

func (s *Service) SendConfirmation(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyConfirmation, n, s.requester)
}

func (s *Service) SendAppliedByManagement(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyAppliedByManagement, n, s.requester)
}

func (s *Service) SendNewApplication(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyNewApplication, n, s.approversOfInterest)
}

func (s *Service) NotifyReplacementForApply(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyReplacementApply, n, s.target)
}

func (s *Service) SendTemporaryAllowed(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyTemporaryAllowed, n, s.requesterAnd(s.secondStageAuthorities))
}

func (s *Service) SendAllowed(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyAllowed, n, s.requesterAnd(s.office))
}

func (s *Service) NotifyReplacementAllow(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyReplacementAllow, n, s.target)
}

func (s *Service) SendAllowedDirectlyConfirmation(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyAllowedDirectlyConfirmation, n, s.requester)
}

func (s *Service) SendAllowedDirectlyByManagement(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyAllowedDirectlyByManagement, n, s.requester)
}

func (s *Service) SendNewDirectlyAllowed(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyNewDirectlyAllowed, n, s.approversOfInterest)
}

func (s *Service) NotifyReplacementDirectlyAllowed(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyReplacementDirectlyAllowed, n, s.target)
}

func (s *Service) SendRejected(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyRejected, n, s.requester)
}

func (s *Service) NotifyReplacementCancellation(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyReplacementCancellation, n, s.target)
}

func (s *Service) SendCancelledByManagement(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyCancelledByManagement, n, s.requesterAnd(s.office))
}

func (s *Service) SendCancellationRequest(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyCancellationRequest, n, s.office)
}

func (s *Service) SendRevoked(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyRevoked, n, s.requesterAnd(s.approversOfInterest))
}

func (s *Service) SendCancelledDirectlyByApplicant(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyCancelledDirectlyByApplicant, n, s.requester)
}

func (s *Service) SendCancelledDirectlyByManagement(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyCancelledDirectlyByManagement, n, s.requester)
}

func (s *Service) SendCancelledDirectlyInformation(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyCancelledDirectlyInformation, n, s.approversOfInterest)
}

func (s *Service) SendDeclinedCancellationRequest(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyDeclinedCancellationRequest, n, s.requesterAnd(s.office))
}

func (s *Service) SendSickNoteConverted(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifySickNoteConverted, n, s.requester)
}

func (s *Service) SendEdited(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyEdited, n, s.requester)
}

func (s *Service) NotifyReplacementAboutEdit(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyReplacementEdit, n, s.target)
}

func (s *Service) SendRemind(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyRemind, n, s.approversOfInterest)
}

func (s *Service) SendRefer(ctx context.Context, n Notice) error {
	return s.send(ctx, leave.NotifyRefer, n, s.target)
}

// SendTechnicalError reports a failed side effect to the administrator.
func (s *Service) SendTechnicalError(ctx context.Context, app leave.Application, cause error) {
	if s.cfg.TechnicalRecipient == "" || cause == nil {
		return
	}
	event := events.LeaveMailRequestedEvent{
		EventType:     events.LeaveMailRequestedEventType,
		Kind:          TechnicalErrorKind,
		To:            s.cfg.TechnicalRecipient,
		ApplicationID: app.ID,
		Data:          map[string]string{"error": cause.Error()},
		OccurredAt:    s.now().UTC(),
	}
	if err := s.enqueue(ctx, app, event); err != nil {
		s.logger.Error("enqueue technical error mail failed",
			zap.Int64("leave_id", app.ID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

func (s *Service) send(ctx context.Context, kind leave.NotificationKind, n Notice, recipients recipientsFunc) error {
	p, err := s.loadParties(ctx, n)
	if err != nil {
		return err
	}
	to, err := recipients(ctx, p)
	if err != nil {
		return err
	}

	data := s.templateData(n, p)
	sent := 0
	for _, r := range to {
		if r.Email == "" {
			s.logger.Debug("skip recipient without email", zap.Int64("person_id", r.ID), zap.String("kind", string(kind)))
			continue
		}
		event := events.LeaveMailRequestedEvent{
			EventType:     events.LeaveMailRequestedEventType,
			Kind:          string(kind),
			To:            r.Email,
			RecipientName: r.NiceName(),
			ApplicationID: n.Application.ID,
			Data:          data,
			OccurredAt:    s.now().UTC(),
		}
		if err := s.enqueue(ctx, n.Application, event); err != nil {
			return err
		}
		sent++
	}

	s.logger.Debug("notification queued",
		zap.String("kind", string(kind)),
		zap.Int64("leave_id", n.Application.ID),
		zap.Int("recipients", sent),
	)
	return nil
}

func (s *Service) enqueue(ctx context.Context, app leave.Application, event events.LeaveMailRequestedEvent) error {
	outboxEvent, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"application",
		strconv.FormatInt(app.ID, 10),
		events.LeaveMailRequestedEventType,
		events.LeaveMailTopic,
		event,
	)
	if err != nil {
		return err
	}
	return s.outbox.Create(ctx, outboxEvent)
}

func (s *Service) loadParties(ctx context.Context, n Notice) (parties, error) {
	ids := []int64{n.Application.PersonID}
	if n.ActorID != 0 {
		ids = append(ids, n.ActorID)
	}
	if n.Target != 0 {
		ids = append(ids, n.Target)
	}
	people, err := s.persons.FindByIDs(ctx, ids)
	if err != nil {
		return parties{}, err
	}

	var p parties
	for _, found := range people {
		if found.ID == n.Application.PersonID {
			p.requester = found
		}
		if found.ID == n.ActorID {
			p.actor = found
		}
		if found.ID == n.Target {
			p.target = found
		}
	}
	return p, nil
}

func (s *Service) templateData(n Notice, p parties) map[string]string {
	app := n.Application
	data := map[string]string{
		"person_name": p.requester.NiceName(),
		"actor_name":  p.actor.NiceName(),
		"start_date":  app.StartDate.Format("2006-01-02"),
		"end_date":    app.EndDate.Format("2006-01-02"),
		"day_length":  string(app.DayLength),
		"status":      string(app.Status),
	}
	if n.Text.Present {
		data["comment"] = n.Text.Value
	}
	if s.cfg.ApplicationURL != "" && app.ID != 0 {
		data["url"] = s.cfg.ApplicationURL + "/applications/" + strconv.FormatInt(app.ID, 10)
	}
	for _, r := range app.HolidayReplacements {
		if r.PersonID == n.Target && r.Note != nil {
			data["note"] = *r.Note
		}
	}
	return data
}
