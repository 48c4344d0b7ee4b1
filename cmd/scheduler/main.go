package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/medtrack/medtrack/internal/config"
	"github.com/medtrack/medtrack/internal/database"
	"github.com/medtrack/medtrack/internal/logger"
	"github.com/medtrack/medtrack/internal/queue"
	"github.com/medtrack/medtrack/internal/workers"
	"go.uber.org/zap"
)

// The scheduler runs the per-minute reminder dispatcher and the job consumer
// that turns dispatched reminders into notification and adherence records.
func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.SchedulerDebug || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_scheduler",
		zap.Bool("debug_mode", debugMode),
		zap.Duration("reminder_interval", cfg.ReminderInterval),
	)

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	medicationRepo := database.NewMedicationRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	adherenceRepo := database.NewAdherenceRepository(db)
	activityRepo := database.NewUserActivityRepository(db)

	// Initialize RabbitMQ queue
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_rabbitmq",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// Create the dispatcher and notifier
	dispatcher := workers.NewReminderDispatcher(
		userRepo,
		medicationRepo,
		scheduleRepo,
		activityRepo,
		jobQueue,
		zapLogger,
		workers.WithDispatchInterval(cfg.ReminderInterval),
	)
	notifier := workers.NewNotifier(
		medicationRepo,
		scheduleRepo,
		notificationRepo,
		adherenceRepo,
		activityRepo,
		zapLogger,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Run the per-minute dispatch loop
	go func() {
		if err := dispatcher.Run(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("dispatcher_stopped_with_error", zap.Error(err))
		}
	}()

	// Start consuming messages
	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming_messages", zap.Error(err))
	}

	zapLogger.Info("scheduler_started_consuming_messages")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				if err := notifier.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("failed_to_process_job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Handle errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("shutdown_signal_received_stopping_scheduler")

	// Cancel context to stop processing
	cancel()

	zapLogger.Info("scheduler_stopped")
}
