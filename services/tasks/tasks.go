package tasks

import (
	"encoding/json"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"

	"github.com/hibiken/asynq"
)

const (
	// TypeNotifySend delivers one queued notification.
	TypeNotifySend = "notify:send"
	// TypePaymentSweep expires stale pending payment sessions.
	TypePaymentSweep = "payment:sweep"
	// TypeNoShowScan flags confirmed bookings whose grace window has passed.
	TypeNoShowScan = "booking:noshow_scan"
)

func NewNotifyTask(payload models.NotifyPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotifySend, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}

	return task, opts, nil
}

// NewPaymentSweepTask is enqueued on a fixed cadence; the uniqueness window
// keeps overlapping schedulers from stacking sweeps.
func NewPaymentSweepTask() (*asynq.Task, []asynq.Option) {
	task := asynq.NewTask(TypePaymentSweep, nil)
	opts := []asynq.Option{asynq.MaxRetry(2), asynq.Unique(2 * time.Minute)}

	return task, opts
}

func NewNoShowScanTask() (*asynq.Task, []asynq.Option) {
	task := asynq.NewTask(TypeNoShowScan, nil)
	opts := []asynq.Option{asynq.MaxRetry(2), asynq.Unique(2 * time.Minute)}

	return task, opts
}
