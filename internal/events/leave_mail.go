package events

import "time"

const (
	LeaveMailTopic = "hr.leave.mail.v1"

	LeaveMailRequestedEventType = "leave_mail_requested"
)

// LeaveMailRequestedEvent is one rendered-on-delivery mail for one recipient.
// Kind selects the template.
type LeaveMailRequestedEvent struct {
	EventType     string            `json:"event_type"`
	Kind          string            `json:"kind"`
	To            string            `json:"to"`
	RecipientName string            `json:"recipient_name"`
	ApplicationID int64             `json:"application_id"`
	Data          map[string]string `json:"data"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
