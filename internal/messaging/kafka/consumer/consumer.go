package consumer

import (
	"context"
	"encoding/json"

	"go-leave/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type PersonEraser interface {
	DeleteAllByPerson(ctx context.Context, personID int64) error
}

type OrgCache interface {
	Invalidate(ctx context.Context, personID int64) error
}

// ConsumePersonLifecycle erases the leave data of deleted persons. Messages
// that fail to process stay uncommitted.
func ConsumePersonLifecycle(
	ctx context.Context,
	reader MessageReader,
	leaves PersonEraser,
	org OrgCache,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.person_lifecycle")
	log.Info("person lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("person lifecycle consumer stopped")
				return
			}
			log.Error("fetch person lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.PersonDeletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode person lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.EventType != events.PersonDeletedEventType || event.PersonID <= 0 {
			log.Debug("skip person lifecycle event",
				zap.String("event_type", event.EventType),
				zap.Int64("person_id", event.PersonID),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := leaves.DeleteAllByPerson(ctx, event.PersonID); err != nil {
			log.Error("delete leaves of deleted person failed",
				zap.Int64("person_id", event.PersonID),
				zap.Error(err),
			)
			continue
		}

		if org != nil {
			if err := org.Invalidate(ctx, event.PersonID); err != nil {
				log.Warn("invalidate org cache failed",
					zap.Int64("person_id", event.PersonID),
					zap.Error(err),
				)
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit person lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("leave data of deleted person erased", zap.Int64("person_id", event.PersonID))
	}
}
