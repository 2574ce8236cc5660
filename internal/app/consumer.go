package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka/consumer"
	"go-leave/internal/shared/config"
	"go-leave/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer erases leave data of deleted persons and drops their cached
// organization entries.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	infra, err := connect(cfg, true)
	if err != nil {
		return err
	}
	defer infra.Close()

	module := buildLeaveModule(infra, cfg)

	reader := connection.NewKafkaReader(cfg.Kafka.Broker, events.PersonLifecycleTopic, cfg.Kafka.GroupID+"-person-lifecycle")
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumePersonLifecycle(ctx, reader, module.service, module.org, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
