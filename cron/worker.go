package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"clubvoice/config"
	bookingRepo "clubvoice/database/repository/booking"
	clubRepo "clubvoice/database/repository/club"
	"clubvoice/services/marketplace"
	"clubvoice/services/notification"
	"clubvoice/services/tasks"
)

// Deps holds everything the background worker needs.
type Deps struct {
	Notifier notification.Service
	Syncer   *marketplace.Syncer
	Bookings bookingRepo.BookingRepository
	Clubs    clubRepo.ClubRepository
}

// InitWorker runs the async task worker in background. It drains three
// queues: notification delivery attempts, marketplace syncs and booking
// reminders.
func InitWorker(deps Deps) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}

	concurrency := config.AppConfig.WorkerCount
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationDeliver, handleNotificationDeliver(deps.Notifier))
	mux.HandleFunc(tasks.TypeMarketplaceSync, handleMarketplaceSync(deps.Syncer))
	mux.HandleFunc(tasks.TypeMarketplaceCancel, handleMarketplaceCancel(deps.Syncer))
	mux.HandleFunc(tasks.TypeBookingReminder, handleBookingReminder(deps))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[Worker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleNotificationDeliver(notifier notification.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.NotificationDeliverPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotificationHandler] 🔴 Invalid payload: %v", err)
			return err
		}
		// The dispatcher owns the retry schedule; an error here means
		// the attempt could not even be recorded.
		return notifier.Deliver(ctx, p.NotificationID)
	}
}

func handleMarketplaceSync(syncer *marketplace.Syncer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.MarketplaceSyncPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[MarketplaceHandler] 🔴 Invalid payload: %v", err)
			return err
		}
		return syncer.ProcessSync(ctx, p.BookingID)
	}
}

func handleMarketplaceCancel(syncer *marketplace.Syncer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.MarketplaceCancelPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[MarketplaceHandler] 🔴 Invalid payload: %v", err)
			return err
		}
		return syncer.ProcessCancel(ctx, p.BookingID)
	}
}

func handleBookingReminder(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.BookingReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] 🔴 Invalid payload: %v", err)
			return err
		}
		b, err := deps.Bookings.GetByID(ctx, p.BookingID)
		if err != nil {
			log.Printf("[ReminderHandler] ❌ Failed to load booking %s: %v", p.BookingID, err)
			return err
		}
		club, err := deps.Clubs.GetByID(ctx, b.ClubID)
		if err != nil {
			log.Printf("[ReminderHandler] ❌ Failed to load club %s: %v", b.ClubID, err)
			return err
		}
		return deps.Notifier.QueueBookingReminder(ctx, club, b)
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Worker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
