package dispatch

import (
	"context"
	"fmt"

	"go-leave/internal/calendar"
	"go-leave/internal/leave"
	"go-leave/internal/notification"

	"go.uber.org/zap"
)

type Notifier interface {
	SendConfirmation(ctx context.Context, n notification.Notice) error
	SendAppliedByManagement(ctx context.Context, n notification.Notice) error
	SendNewApplication(ctx context.Context, n notification.Notice) error
	NotifyReplacementForApply(ctx context.Context, n notification.Notice) error
	SendTemporaryAllowed(ctx context.Context, n notification.Notice) error
	SendAllowed(ctx context.Context, n notification.Notice) error
	NotifyReplacementAllow(ctx context.Context, n notification.Notice) error
	SendAllowedDirectlyConfirmation(ctx context.Context, n notification.Notice) error
	SendAllowedDirectlyByManagement(ctx context.Context, n notification.Notice) error
	SendNewDirectlyAllowed(ctx context.Context, n notification.Notice) error
	NotifyReplacementDirectlyAllowed(ctx context.Context, n notification.Notice) error
	SendRejected(ctx context.Context, n notification.Notice) error
	NotifyReplacementCancellation(ctx context.Context, n notification.Notice) error
	SendCancelledByManagement(ctx context.Context, n notification.Notice) error
	SendCancellationRequest(ctx context.Context, n notification.Notice) error
	SendRevoked(ctx context.Context, n notification.Notice) error
	SendCancelledDirectlyByApplicant(ctx context.Context, n notification.Notice) error
	SendCancelledDirectlyByManagement(ctx context.Context, n notification.Notice) error
	SendCancelledDirectlyInformation(ctx context.Context, n notification.Notice) error
	SendDeclinedCancellationRequest(ctx context.Context, n notification.Notice) error
	SendSickNoteConverted(ctx context.Context, n notification.Notice) error
	SendEdited(ctx context.Context, n notification.Notice) error
	NotifyReplacementAboutEdit(ctx context.Context, n notification.Notice) error
	SendRemind(ctx context.Context, n notification.Notice) error
	SendRefer(ctx context.Context, n notification.Notice) error
	SendTechnicalError(ctx context.Context, app leave.Application, cause error)
}

type BalanceRecalculator interface {
	UpdateRemainingDays(ctx context.Context, year int, personID int64) error
}

type CalendarSyncer interface {
	AddEntry(ctx context.Context, absence calendar.Absence) error
	RemoveEntry(ctx context.Context, applicationID int64) error
}

// Dispatcher applies the effects of a committed transition. Every effect is
// attempted; a failing one is logged and reported on the technical channel.
type Dispatcher struct {
	notifier Notifier
	balance  BalanceRecalculator
	calendar CalendarSyncer
	logger   *zap.Logger
}

func NewDispatcher(notifier Notifier, balance BalanceRecalculator, calendar CalendarSyncer, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("dispatch.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dispatch.dispatcher")
	}
	return &Dispatcher{notifier: notifier, balance: balance, calendar: calendar, logger: l}
}

func (d *Dispatcher) Dispatch(ctx context.Context, app leave.Application, actorID int64, effects []leave.Effect) {
	for _, e := range effects {
		if err := d.apply(ctx, app, actorID, e); err != nil {
			d.logger.Error("leave side effect failed",
				zap.Int64("leave_id", app.ID),
				zap.String("effect", describe(e)),
				zap.Error(err),
			)
			d.notifier.SendTechnicalError(ctx, app, err)
		}
	}
}

func (d *Dispatcher) apply(ctx context.Context, app leave.Application, actorID int64, e leave.Effect) error {
	switch e := e.(type) {
	case leave.Notify:
		send, ok := d.senders()[e.Kind]
		if !ok {
			return fmt.Errorf("unknown notification kind %q", e.Kind)
		}
		return send(ctx, notification.Notice{
			Application: app,
			ActorID:     actorID,
			Target:      e.Target,
			Text:        e.Text,
		})
	case leave.RecalculateBalance:
		return d.balance.UpdateRemainingDays(ctx, e.Year, e.PersonID)
	case leave.AddCalendarEntry:
		return d.calendar.AddEntry(ctx, absenceOf(app))
	case leave.RemoveCalendarEntry:
		return d.calendar.RemoveEntry(ctx, app.ID)
	default:
		return fmt.Errorf("unsupported effect %T", e)
	}
}

type sendFunc func(ctx context.Context, n notification.Notice) error

func (d *Dispatcher) senders() map[leave.NotificationKind]sendFunc {
	n := d.notifier
	return map[leave.NotificationKind]sendFunc{
		leave.NotifyConfirmation:                  n.SendConfirmation,
		leave.NotifyAppliedByManagement:           n.SendAppliedByManagement,
		leave.NotifyNewApplication:                n.SendNewApplication,
		leave.NotifyReplacementApply:              n.NotifyReplacementForApply,
		leave.NotifyTemporaryAllowed:              n.SendTemporaryAllowed,
		leave.NotifyAllowed:                       n.SendAllowed,
		leave.NotifyReplacementAllow:              n.NotifyReplacementAllow,
		leave.NotifyAllowedDirectlyConfirmation:   n.SendAllowedDirectlyConfirmation,
		leave.NotifyAllowedDirectlyByManagement:   n.SendAllowedDirectlyByManagement,
		leave.NotifyNewDirectlyAllowed:            n.SendNewDirectlyAllowed,
		leave.NotifyReplacementDirectlyAllowed:    n.NotifyReplacementDirectlyAllowed,
		leave.NotifyRejected:                      n.SendRejected,
		leave.NotifyReplacementCancellation:       n.NotifyReplacementCancellation,
		leave.NotifyCancelledByManagement:         n.SendCancelledByManagement,
		leave.NotifyCancellationRequest:           n.SendCancellationRequest,
		leave.NotifyRevoked:                       n.SendRevoked,
		leave.NotifyCancelledDirectlyByApplicant:  n.SendCancelledDirectlyByApplicant,
		leave.NotifyCancelledDirectlyByManagement: n.SendCancelledDirectlyByManagement,
		leave.NotifyCancelledDirectlyInformation:  n.SendCancelledDirectlyInformation,
		leave.NotifyDeclinedCancellationRequest:   n.SendDeclinedCancellationRequest,
		leave.NotifySickNoteConverted:             n.SendSickNoteConverted,
		leave.NotifyEdited:                        n.SendEdited,
		leave.NotifyReplacementEdit:               n.NotifyReplacementAboutEdit,
		leave.NotifyRemind:                        n.SendRemind,
		leave.NotifyRefer:                         n.SendRefer,
	}
}

func absenceOf(app leave.Application) calendar.Absence {
	return calendar.Absence{
		ApplicationID: app.ID,
		PersonID:      app.PersonID,
		Title:         "Vacation",
		Start:         app.StartDate,
		End:           app.EndDate,
		HalfDay:       app.DayLength == leave.DayLengthMorning || app.DayLength == leave.DayLengthNoon,
	}
}

func describe(e leave.Effect) string {
	if n, ok := e.(leave.Notify); ok {
		return "notify:" + string(n.Kind)
	}
	return fmt.Sprintf("%T", e)
}
