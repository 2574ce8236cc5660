package balance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"go.uber.org/zap"
)

// Recalculator asks the balance owner to recompute the remaining vacation
// days of a person for one year. The computation itself lives elsewhere.
type Recalculator struct {
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewRecalculator(outbox kafka.OutboxRepository, logger ...*zap.Logger) *Recalculator {
	l := zap.L().Named("balance.recalculator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.recalculator")
	}
	return &Recalculator{outbox: outbox, now: time.Now, logger: l}
}

func (r *Recalculator) UpdateRemainingDays(ctx context.Context, year int, personID int64) error {
	if personID <= 0 {
		return fmt.Errorf("recalculate balance: invalid person id %d", personID)
	}

	payload := events.BalanceRecalculationRequestedEvent{
		EventType:  events.BalanceRecalculationRequestedEventType,
		PersonID:   personID,
		Year:       year,
		OccurredAt: r.now().UTC(),
	}
	event, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"person",
		strconv.FormatInt(personID, 10),
		events.BalanceRecalculationRequestedEventType,
		events.LeaveBalanceTopic,
		payload,
	)
	if err != nil {
		return err
	}
	if err := r.outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("enqueue balance recalculation: %w", err)
	}

	r.logger.Debug("balance recalculation requested", zap.Int64("person_id", personID), zap.Int("year", year))
	return nil
}
