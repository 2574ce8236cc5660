package leave

import "go-leave/internal/comment"

type NotificationKind string

const (
	NotifyConfirmation                  NotificationKind = "confirmation"
	NotifyAppliedByManagement           NotificationKind = "applied_by_management"
	NotifyNewApplication                NotificationKind = "new_application"
	NotifyReplacementApply              NotificationKind = "holiday_replacement_apply"
	NotifyTemporaryAllowed              NotificationKind = "temporary_allowed"
	NotifyAllowed                       NotificationKind = "allowed"
	NotifyReplacementAllow              NotificationKind = "holiday_replacement_allow"
	NotifyAllowedDirectlyConfirmation   NotificationKind = "allowed_directly_confirmation"
	NotifyAllowedDirectlyByManagement   NotificationKind = "allowed_directly_by_management"
	NotifyNewDirectlyAllowed            NotificationKind = "new_directly_allowed_application"
	NotifyReplacementDirectlyAllowed    NotificationKind = "holiday_replacement_directly_allowed"
	NotifyRejected                      NotificationKind = "rejected"
	NotifyReplacementCancellation       NotificationKind = "holiday_replacement_cancellation"
	NotifyCancelledByManagement         NotificationKind = "cancelled_by_management"
	NotifyCancellationRequest           NotificationKind = "cancellation_request"
	NotifyRevoked                       NotificationKind = "revoked"
	NotifyCancelledDirectlyByApplicant  NotificationKind = "cancelled_directly_by_applicant"
	NotifyCancelledDirectlyByManagement NotificationKind = "cancelled_directly_by_management"
	NotifyCancelledDirectlyInformation  NotificationKind = "cancelled_directly_information"
	NotifyDeclinedCancellationRequest   NotificationKind = "declined_cancellation_request"
	NotifySickNoteConverted             NotificationKind = "sick_note_converted"
	NotifyEdited                        NotificationKind = "edited"
	NotifyReplacementEdit               NotificationKind = "holiday_replacement_edit"
	NotifyRemind                        NotificationKind = "remind"
	NotifyRefer                         NotificationKind = "refer"
)

// Effect is a side effect requested by a transition. Effects are applied
// after the transition has been committed.
type Effect interface {
	effect()
}

// Notify asks for one notification. Target is only set for notifications
// addressed to a single named person (replacement, delegate).
type Notify struct {
	Kind   NotificationKind
	Target int64
	Text   comment.Text
}

type RecalculateBalance struct {
	Year     int
	PersonID int64
}

type AddCalendarEntry struct{}

type RemoveCalendarEntry struct{}

func (Notify) effect()              {}
func (RecalculateBalance) effect()  {}
func (AddCalendarEntry) effect()    {}
func (RemoveCalendarEntry) effect() {}

type CommentDraft struct {
	Action   comment.Action
	Text     comment.Text
	AuthorID int64
}

// Transition is the outcome of one state machine operation. A transition
// without comment and effects is a no-op and must not be persisted.
type Transition struct {
	Application Application
	Comment     *CommentDraft
	Effects     []Effect
}

func (t Transition) IsNoop() bool {
	return t.Comment == nil && len(t.Effects) == 0
}

func notify(kind NotificationKind, text comment.Text) Notify {
	return Notify{Kind: kind, Text: text}
}

func notifyEach(kind NotificationKind, replacements []HolidayReplacement, text comment.Text) []Effect {
	effects := make([]Effect, 0, len(replacements))
	for _, r := range replacements {
		effects = append(effects, Notify{Kind: kind, Target: r.PersonID, Text: text})
	}
	return effects
}

func recalculate(app Application) []Effect {
	years := app.Years()
	effects := make([]Effect, 0, len(years))
	for _, y := range years {
		effects = append(effects, RecalculateBalance{Year: y, PersonID: app.PersonID})
	}
	return effects
}
