package leave

import (
	"time"

	"go-leave/internal/comment"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/person"
)

func (a Application) draft(action comment.Action, auth Authority, text comment.Text) *CommentDraft {
	return &CommentDraft{Action: action, Text: text, AuthorID: auth.ActorID}
}

// Submit turns a new application into a WAITING one.
func (a Application) Submit(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.IsSelf() && !auth.CanActOnBehalf() {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}

	next := a
	next.ApplierID = auth.ActorID
	next.Status = StatusWaiting
	next.ApplicationDate = dateOf(now)

	confirmation := NotifyConfirmation
	if !auth.IsSelf() {
		confirmation = NotifyAppliedByManagement
	}

	effects := []Effect{
		notify(confirmation, text),
		notify(NotifyNewApplication, text),
	}
	effects = append(effects, notifyEach(NotifyReplacementApply, next.HolidayReplacements, text)...)
	effects = append(effects, recalculate(next)...)
	effects = append(effects, AddCalendarEntry{})

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionApplied, auth, text),
		Effects:     effects,
	}, nil
}

// DirectAllow creates an application that skips the approval stages.
func (a Application) DirectAllow(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.IsPrivileged() {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}

	next := a
	next.ApplierID = auth.ActorID
	next.Status = StatusAllowed
	next.ApplicationDate = dateOf(now)

	confirmation := NotifyAllowedDirectlyConfirmation
	if !auth.IsSelf() {
		confirmation = NotifyAllowedDirectlyByManagement
	}

	effects := []Effect{
		notify(confirmation, text),
		notify(NotifyNewDirectlyAllowed, text),
	}
	effects = append(effects, notifyEach(NotifyReplacementDirectlyAllowed, next.HolidayReplacements, text)...)
	effects = append(effects, recalculate(next)...)
	effects = append(effects, AddCalendarEntry{})

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionAllowedDirectly, auth, text),
		Effects:     effects,
	}, nil
}

// ConvertFromSickLeave records a former sick note as allowed vacation.
func (a Application) ConvertFromSickLeave(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.IsPrivileged() {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}

	next := a
	next.ApplierID = auth.ActorID
	next.Status = StatusAllowed
	next.ApplicationDate = dateOf(now)

	effects := []Effect{notify(NotifySickNoteConverted, text)}
	effects = append(effects, recalculate(next)...)

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionConverted, auth, text),
		Effects:     effects,
	}, nil
}

// Approve is a no-op when the application already reached the requested
// stage or a later one.
func (a Application) Approve(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	decision := auth.approval(a.TwoStageApproval)
	if decision == approvalDenied {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}

	switch a.Status {
	case StatusWaiting:
	case StatusTemporaryAllowed:
		if decision == approvalProvisional {
			return Transition{Application: a}, nil
		}
	case StatusAllowed, StatusAllowedCancellationRequested:
		return Transition{Application: a}, nil
	default:
		return Transition{}, leaveerrors.ErrInvalidStatusTransition
	}

	next := a
	next.BossID = &auth.ActorID
	next.EditedDate = datePtr(now)

	if decision == approvalProvisional {
		next.Status = StatusTemporaryAllowed
		return Transition{
			Application: next,
			Comment:     next.draft(comment.ActionTemporaryAllowed, auth, text),
			Effects:     []Effect{notify(NotifyTemporaryAllowed, text)},
		}, nil
	}

	next.Status = StatusAllowed
	effects := []Effect{notify(NotifyAllowed, text)}
	effects = append(effects, notifyEach(NotifyReplacementAllow, next.HolidayReplacements, text)...)

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionAllowed, auth, text),
		Effects:     effects,
	}, nil
}

func (a Application) Reject(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.CanApprove(a.TwoStageApproval) {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}
	if !a.HasStatus(StatusWaiting, StatusTemporaryAllowed) {
		return Transition{}, leaveerrors.ErrInvalidStatusTransition
	}

	next := a
	next.Status = StatusRejected
	next.BossID = &auth.ActorID
	next.EditedDate = datePtr(now)

	effects := []Effect{notify(NotifyRejected, text)}
	effects = append(effects, notifyEach(NotifyReplacementCancellation, next.HolidayReplacements, text)...)
	effects = append(effects, RemoveCalendarEntry{})

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionRejected, auth, text),
		Effects:     effects,
	}, nil
}

// Cancel revokes a waiting application and cancels, or requests the
// cancellation of, an approved one.
func (a Application) Cancel(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.IsSelf() && a.ApplierID != auth.ActorID && !auth.CanCancelDirectly() {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}

	var t Transition
	switch a.Status {
	case StatusWaiting:
		t = a.revoke(auth, text)
	case StatusAllowed, StatusTemporaryAllowed, StatusAllowedCancellationRequested:
		if !auth.CanCancelDirectly() && a.Status == StatusAllowedCancellationRequested {
			return Transition{Application: a}, nil
		}
		t = a.cancelApproved(auth, text)
	default:
		return Transition{}, leaveerrors.ErrInvalidStatusTransition
	}

	if t.Application.CancellerID == nil {
		t.Application.CancellerID = &auth.ActorID
	}
	if t.Application.CancelDate == nil {
		t.Application.CancelDate = datePtr(now)
	}
	t.Effects = append(t.Effects, recalculate(t.Application)...)
	t.Effects = append(t.Effects, RemoveCalendarEntry{})
	return t, nil
}

func (a Application) revoke(auth Authority, text comment.Text) Transition {
	next := a
	next.Status = StatusRevoked

	effects := []Effect{notify(NotifyRevoked, text)}
	effects = append(effects, notifyEach(NotifyReplacementCancellation, next.HolidayReplacements, text)...)

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionRevoked, auth, text),
		Effects:     effects,
	}
}

func (a Application) cancelApproved(auth Authority, text comment.Text) Transition {
	next := a
	if !auth.CanCancelDirectly() {
		next.Status = StatusAllowedCancellationRequested
		return Transition{
			Application: next,
			Comment:     next.draft(comment.ActionCancelRequested, auth, text),
			Effects:     []Effect{notify(NotifyCancellationRequest, text)},
		}
	}

	next.Status = StatusCancelled
	effects := []Effect{notify(NotifyCancelledByManagement, text)}
	effects = append(effects, notifyEach(NotifyReplacementCancellation, next.HolidayReplacements, text)...)

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionCancelled, auth, text),
		Effects:     effects,
	}
}

func (a Application) DirectCancel(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.IsPrivileged() {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}
	if a.Status.IsTerminal() {
		return Transition{}, leaveerrors.ErrInvalidStatusTransition
	}

	next := a
	next.Status = StatusCancelled
	if next.CancellerID == nil {
		next.CancellerID = &auth.ActorID
	}
	if next.CancelDate == nil {
		next.CancelDate = datePtr(now)
	}

	confirmation := NotifyCancelledDirectlyByApplicant
	if !auth.IsSelf() {
		confirmation = NotifyCancelledDirectlyByManagement
	}

	effects := []Effect{
		notify(confirmation, text),
		notify(NotifyCancelledDirectlyInformation, text),
	}
	effects = append(effects, notifyEach(NotifyReplacementCancellation, next.HolidayReplacements, text)...)
	effects = append(effects, recalculate(next)...)

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionCancelledDirectly, auth, text),
		Effects:     effects,
	}, nil
}

func (a Application) DeclineCancellationRequest(auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.CanCancelDirectly() {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}
	if a.Status != StatusAllowedCancellationRequested {
		return Transition{}, leaveerrors.ErrInvalidStatusTransition
	}

	next := a
	next.Status = StatusAllowed
	next.EditedDate = datePtr(now)

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionCancelRequestedDeclined, auth, text),
		Effects:     []Effect{notify(NotifyDeclinedCancellationRequest, text)},
	}, nil
}

// Edit replaces period and holiday replacements of a waiting application.
// Replacements are matched by person: added ones get an apply notice,
// removed ones a cancellation notice and retained ones an edit notice when
// the period changed.
func (a Application) Edit(edited Application, auth Authority, text comment.Text, now time.Time) (Transition, error) {
	if !auth.IsSelf() && a.ApplierID != auth.ActorID && !auth.Has(CapOffice) {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}
	if a.Status != StatusWaiting {
		return Transition{}, leaveerrors.ErrInvalidStatusTransition
	}
	if edited.PersonID != a.PersonID {
		return Transition{}, leaveerrors.ErrRequesterChanged
	}

	next := a
	next.StartDate = edited.StartDate
	next.EndDate = edited.EndDate
	next.DayLength = edited.DayLength
	next.HolidayReplacements = edited.HolidayReplacements
	next.EditedDate = datePtr(now)

	added, removed, retained := diffReplacements(a.HolidayReplacements, next.HolidayReplacements)

	effects := []Effect{notify(NotifyEdited, text)}
	effects = append(effects, notifyEach(NotifyReplacementApply, added, text)...)
	effects = append(effects, notifyEach(NotifyReplacementCancellation, removed, text)...)
	if next.periodDiffers(a) {
		effects = append(effects, notifyEach(NotifyReplacementEdit, retained, text)...)
	}
	effects = append(effects, recalculateAll(a, next)...)

	return Transition{
		Application: next,
		Comment:     next.draft(comment.ActionEdited, auth, text),
		Effects:     effects,
	}, nil
}

const remindGracePeriod = 2

// Remind asks the deciders again. It is allowed once per day and not before
// the grace period after applying has passed.
func (a Application) Remind(auth Authority, now time.Time) (Transition, error) {
	if !auth.IsSelf() && a.ApplierID != auth.ActorID {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}
	if !a.HasStatus(StatusWaiting, StatusTemporaryAllowed) {
		return Transition{}, leaveerrors.ErrInvalidStatusTransition
	}

	today := dateOf(now)
	if a.RemindDate == nil {
		earliest := dateOf(a.ApplicationDate).AddDate(0, 0, remindGracePeriod)
		if earliest.After(today) {
			return Transition{}, leaveerrors.ErrRemindTooEarly.WithDetails(map[string]string{
				"earliest_date": earliest.Format(dateLayout),
			})
		}
	} else if dateOf(*a.RemindDate).Equal(today) {
		return Transition{}, leaveerrors.ErrRemindAlreadySentToday
	}

	next := a
	next.RemindDate = &today

	return Transition{
		Application: next,
		Effects:     []Effect{notify(NotifyRemind, comment.NoText())},
	}, nil
}

// Refer hands the application to delegate for a decision. The comment
// carries the delegate's display name.
func (a Application) Refer(auth Authority, delegate person.Person) (Transition, error) {
	if !auth.CanCancelDirectly() {
		return Transition{}, leaveerrors.ErrNotAuthorized
	}

	text := comment.SomeText(delegate.NiceName())
	return Transition{
		Application: a,
		Comment:     a.draft(comment.ActionReferred, auth, text),
		Effects:     []Effect{Notify{Kind: NotifyRefer, Target: delegate.ID, Text: text}},
	}, nil
}

func diffReplacements(before, after []HolidayReplacement) (added, removed, retained []HolidayReplacement) {
	inBefore := make(map[int64]bool, len(before))
	for _, r := range before {
		inBefore[r.PersonID] = true
	}
	inAfter := make(map[int64]bool, len(after))
	for _, r := range after {
		inAfter[r.PersonID] = true
		if inBefore[r.PersonID] {
			retained = append(retained, r)
		} else {
			added = append(added, r)
		}
	}
	for _, r := range before {
		if !inAfter[r.PersonID] {
			removed = append(removed, r)
		}
	}
	return added, removed, retained
}

func recalculateAll(before, after Application) []Effect {
	seen := map[int]bool{}
	var effects []Effect
	for _, app := range []Application{before, after} {
		for _, e := range recalculate(app) {
			year := e.(RecalculateBalance).Year
			if seen[year] {
				continue
			}
			seen[year] = true
			effects = append(effects, e)
		}
	}
	return effects
}
