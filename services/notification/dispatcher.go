// File: services/notification/dispatcher.go
package notification

import (
	"context"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/tasks"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Dispatcher hands a notification off for delivery without blocking the
// calling flow. Failures are logged and swallowed: a booking must never fail
// because a notification could not be queued.
type Dispatcher interface {
	Notify(ctx context.Context, userID string, kind models.NotificationKind, data map[string]any)
}

// AsynqDispatcher queues notifications on the background worker, which
// retries delivery with backoff.
type AsynqDispatcher struct {
	Client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{Client: client}
}

func (d *AsynqDispatcher) Notify(ctx context.Context, userID string, kind models.NotificationKind, data map[string]any) {
	task, opts, err := tasks.NewNotifyTask(models.NotifyPayload{UserID: userID, Kind: kind, Data: data})
	if err != nil {
		utils.GetLogger().Warn("notification enqueue failed", zap.String("userId", userID), zap.Error(err))
		return
	}
	if _, err := d.Client.EnqueueContext(ctx, task, opts...); err != nil {
		utils.GetLogger().Warn("notification enqueue failed", zap.String("userId", userID), zap.Error(err))
	}
}

// SyncDispatcher delivers inline. Used in tests and in single-process dev
// setups without a worker.
type SyncDispatcher struct {
	Svc NotificationService
}

func (d *SyncDispatcher) Notify(ctx context.Context, userID string, kind models.NotificationKind, data map[string]any) {
	if err := d.Svc.Send(ctx, userID, kind, data); err != nil {
		utils.GetLogger().Warn("notification delivery failed", zap.String("userId", userID), zap.Error(err))
	}
}
