package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/events"
	"go-leave/internal/mail"
	"go-leave/internal/messaging/kafka/consumer"
	"go-leave/internal/shared/config"
	"go-leave/internal/shared/connection"

	"go.uber.org/zap"
)

// RunMailer delivers queued leave mails over SMTP.
func RunMailer(cfg *config.Config) error {
	logger := zap.L().Named("app.mailer")

	client, err := mail.NewSMTPClient(cfg.SMTP)
	if err != nil {
		return err
	}
	sender := mail.NewSender(client, cfg.SMTP.From, cfg.SMTP.DialTimeout)

	reader := connection.NewKafkaReader(cfg.Kafka.Broker, events.LeaveMailTopic, cfg.Kafka.GroupID+"-mailer")
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeLeaveMail(ctx, reader, sender, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("mailer shutting down")
	cancel()

	return nil
}
