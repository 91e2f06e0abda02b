package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/booking"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/notification"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const (
	paymentSweepEvery = time.Minute
	noShowScanEvery   = 5 * time.Minute
)

// InitSweepWorker runs the async worker in background: queued notifications,
// the payment expiry sweep and the no-show scan.
func InitSweepWorker(notifSvc notification.NotificationService, orch payment.Orchestrator, engine booking.Engine) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAsynqDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotifySend, handleNotifyTask(notifSvc))
	mux.HandleFunc(tasks.TypePaymentSweep, handlePaymentSweep(orch, engine))
	mux.HandleFunc(tasks.TypeNoShowScan, handleNoShowScan(engine))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Keep the sweep tasks flowing
	go scheduleSweeps(redisOpts)

	// Start async worker with retry logic
	go func() {
		log.Println("[SweepWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweepWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweepWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleNotifyTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotifyPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotifyHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		if err := notifSvc.Send(ctx, p.UserID, p.Kind, p.Data); err != nil {
			log.Printf("[NotifyHandler] ❌ Failed to deliver %s to %s: %v", p.Kind, p.UserID, err)
			return err
		}
		return nil
	}
}

func handlePaymentSweep(orch payment.Orchestrator, engine booking.Engine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		expired, err := orch.SweepExpired(ctx)
		if err != nil {
			log.Printf("[SweepHandler] ❌ Payment sweep failed: %v", err)
			return err
		}
		if expired > 0 {
			log.Printf("[SweepHandler] ⏰ Expired %d stale payment sessions", expired)
		}

		// Pending bookings whose payment window lapsed go with them.
		cancelled, err := engine.SweepStalePending(ctx)
		if err != nil {
			log.Printf("[SweepHandler] ❌ Stale booking sweep failed: %v", err)
			return err
		}
		if cancelled > 0 {
			log.Printf("[SweepHandler] 🧹 Cancelled %d unpaid bookings", cancelled)
		}
		return nil
	}
}

func handleNoShowScan(engine booking.Engine) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		flagged, err := engine.SweepNoShows(ctx)
		if err != nil {
			log.Printf("[SweepHandler] ❌ No-show scan failed: %v", err)
			return err
		}
		if flagged > 0 {
			log.Printf("[SweepHandler] 🚩 Marked %d bookings as no-show", flagged)
		}
		return nil
	}
}

// scheduleSweeps enqueues the periodic maintenance tasks. Uniqueness options
// on the tasks keep multiple instances from doubling the work.
func scheduleSweeps(redisOpts asynq.RedisClientOpt) {
	client := asynq.NewClient(redisOpts)
	defer client.Close()

	enqueue := func(task *asynq.Task, opts []asynq.Option) {
		if _, err := client.Enqueue(task, opts...); err != nil {
			log.Printf("[SweepWorker] ⚠️ Failed to enqueue %s: %v", task.Type(), err)
		}
	}

	sweepTick := time.NewTicker(paymentSweepEvery)
	scanTick := time.NewTicker(noShowScanEvery)
	defer sweepTick.Stop()
	defer scanTick.Stop()

	task, opts := tasks.NewPaymentSweepTask()
	enqueue(task, opts)

	for {
		select {
		case <-sweepTick.C:
			task, opts := tasks.NewPaymentSweepTask()
			enqueue(task, opts)
		case <-scanTick.C:
			task, opts := tasks.NewNoShowScanTask()
			enqueue(task, opts)
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAsynqDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SweepWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
