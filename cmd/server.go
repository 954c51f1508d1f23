package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"travel-booking/internal/gateway"
	"travel-booking/internal/notification"
	"travel-booking/internal/wire"
	"travel-booking/internal/worker"
	"travel-booking/pkg/database"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, notification workers and payment reconciler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	config, logger, err := bootstrap("app")
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("notify_driver", config.Notify.Driver),
	)

	if config.Chapa.SecretKey == "" {
		logger.Warn("CHAPA_SECRET is not set, payment calls will fail until it is configured")
	}

	db, err := database.InitDB(parent, config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	dispatcher, stopDispatcher, err := newDispatcher(config, logger)
	if err != nil {
		return err
	}

	gw := gateway.NewChapaClient(config.Chapa, logger)
	app := wire.Wiring(db, gw, dispatcher, config, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reconciler := worker.NewReconciler(app.Repo.Payment, app.Service.Payment, config.Reconcile, logger)
	reconcilerDone := make(chan struct{})
	go func() {
		defer close(reconcilerDone)
		reconciler.Start(ctx)
	}()

	serveErr := APIServer(ctx, app.Router, config.App.Port, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stop()
	<-reconcilerDone

	if err := stopDispatcher(shutdownCtx); err != nil {
		logger.Warn("Dispatcher shutdown incomplete", zap.Error(err))
	}

	logger.Info("Application stopped")
	return serveErr
}

// APIServer serves route until ctx is cancelled, then drains in-flight requests.
func APIServer(ctx context.Context, route *chi.Mux, port string, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           route,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// newDispatcher picks the notification transport from config. The returned
// function drains it on shutdown.
func newDispatcher(config *utils.Config, logger *zap.Logger) (notification.Dispatcher, func(context.Context) error, error) {
	switch config.Notify.Driver {
	case "rabbitmq":
		client, err := notification.NewRabbitClient(config.RabbitMQ.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := client.DeclareQueue(config.RabbitMQ.Queue); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("declare queue %s: %w", config.RabbitMQ.Queue, err)
		}

		publisher := notification.NewQueuePublisher(client, config.RabbitMQ.Queue, config.Notify.SendTimeout, logger)
		logger.Info("Confirmations published to RabbitMQ", zap.String("queue", config.RabbitMQ.Queue))

		return publisher, func(ctx context.Context) error {
			err := publisher.Shutdown(ctx)
			if cerr := client.Close(); cerr != nil && err == nil {
				err = cerr
			}
			return err
		}, nil

	case "memory", "":
		mailer := notification.NewMailer(config.Email, logger)
		pool := notification.NewWorkerPool(mailer, config.Notify.Workers, config.Notify.QueueSize, config.Notify.SendTimeout, logger)
		pool.Start()
		return pool, pool.Shutdown, nil

	default:
		return nil, nil, fmt.Errorf("unknown NOTIFY_DRIVER %q", config.Notify.Driver)
	}
}
