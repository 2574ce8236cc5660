package events

import "time"

const (
	LeaveBalanceTopic = "hr.leave.balance.v1"

	BalanceRecalculationRequestedEventType = "balance_recalculation_requested"
)

type BalanceRecalculationRequestedEvent struct {
	EventType  string    `json:"event_type"`
	PersonID   int64     `json:"person_id"`
	Year       int       `json:"year"`
	OccurredAt time.Time `json:"occurred_at"`
}
