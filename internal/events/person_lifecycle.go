package events

import "time"

const (
	PersonLifecycleTopic = "hr.person.lifecycle.v1"

	PersonDeletedEventType = "person_deleted"
)

type PersonDeletedEvent struct {
	EventType  string    `json:"event_type"`
	PersonID   int64     `json:"person_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
