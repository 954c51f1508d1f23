package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"travel-booking/internal/notification"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume payment confirmations from RabbitMQ and send the mails",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := bootstrap("worker")
			if err != nil {
				return err
			}
			defer logger.Sync()

			if config.RabbitMQ.URL == "" {
				return fmt.Errorf("RABBITMQ_URL is required for the worker")
			}

			client, err := notification.NewRabbitClient(config.RabbitMQ.URL)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.DeclareQueue(config.RabbitMQ.Queue); err != nil {
				return fmt.Errorf("declare queue %s: %w", config.RabbitMQ.Queue, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mailer := notification.NewMailer(config.Email, logger)
			consumer := notification.NewQueueConsumer(client, mailer, config.RabbitMQ.Queue, config.Notify.SendTimeout, logger)

			logger.Info("Worker started", zap.String("queue", config.RabbitMQ.Queue))
			return consumer.Run(ctx)
		},
	}
}
