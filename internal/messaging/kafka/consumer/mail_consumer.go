package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"go-leave/internal/events"
	"go-leave/internal/mail"

	"go.uber.org/zap"
)

type MailSender interface {
	Send(ctx context.Context, event events.LeaveMailRequestedEvent) error
}

func ConsumeLeaveMail(
	ctx context.Context,
	reader MessageReader,
	sender MailSender,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_mail")
	log.Info("leave mail consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave mail consumer stopped")
				return
			}
			log.Error("fetch leave mail message failed", zap.Error(err))
			continue
		}

		var event events.LeaveMailRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave mail event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := sender.Send(ctx, event); err != nil {
			if errors.Is(err, mail.ErrPermanent) {
				log.Warn("drop undeliverable leave mail",
					zap.String("kind", event.Kind),
					zap.String("to", event.To),
					zap.Error(err),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			log.Error("send leave mail failed",
				zap.String("kind", event.Kind),
				zap.String("to", event.To),
				zap.Int64("application_id", event.ApplicationID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave mail message failed", zap.Error(err))
			continue
		}

		log.Info("leave mail sent",
			zap.String("kind", event.Kind),
			zap.Int64("application_id", event.ApplicationID),
		)
	}
}
