package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService delivers booking and payment events to customers and
// keeps a short per-user history for the app's inbox.
type NotificationService interface {
	Send(ctx context.Context, userID string, kind models.NotificationKind, data map[string]any) error
	Recent(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
}

// DefaultNotificationService is the production implementation. Deliveries
// are recorded in a capped Redis list per user; push channels can hang off
// the same entry point later.
type DefaultNotificationService struct {
	cache *redis.Client
}

func NewDefaultNotificationService(cache *redis.Client) (*DefaultNotificationService, error) {
	if cache == nil {
		return nil, fmt.Errorf("notification service initialization error: cache client is nil")
	}
	return &DefaultNotificationService{cache: cache}, nil
}

func (s *DefaultNotificationService) Send(ctx context.Context, userID string, kind models.NotificationKind, data map[string]any) error {
	if userID == "" {
		return fmt.Errorf("Send: user id is empty")
	}
	title, body := compose(kind, data)
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("Send: marshal notification: %w", err)
	}

	key := utils.NotifyCachePrefix + userID
	pipe := s.cache.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, utils.NotifyCacheLimit-1)
	pipe.Expire(ctx, key, utils.NotifyCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("Send: store notification for user %s: %w", userID, err)
	}

	utils.GetLogger().Info("notification sent",
		zap.String("userId", userID),
		zap.String("kind", string(kind)),
		zap.String("title", title),
	)
	return nil
}

func (s *DefaultNotificationService) Recent(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	if limit <= 0 || limit > utils.NotifyCacheLimit {
		limit = utils.NotifyCacheLimit
	}
	entries, err := s.cache.LRange(ctx, utils.NotifyCachePrefix+userID, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("Recent: read notifications for user %s: %w", userID, err)
	}

	out := make([]models.Notification, 0, len(entries))
	for _, entry := range entries {
		var n models.Notification
		if err := json.Unmarshal([]byte(entry), &n); err != nil {
			continue // skip entries written by older builds
		}
		out = append(out, n)
	}
	return out, nil
}

// compose renders the user-facing text for an event.
func compose(kind models.NotificationKind, data map[string]any) (string, string) {
	switch kind {
	case models.NotifyBookingCreated:
		return "Booking received 🎬", fmt.Sprintf("Your studio booking is reserved. Complete the payment within %d minutes to lock it in.", int(models.PaymentSessionTTL.Minutes()))
	case models.NotifyBookingConfirmed:
		return "Booking confirmed ✅", "Payment received — your studio time is locked in. See you there!"
	case models.NotifyBookingCancelled:
		if refund, ok := amountField(data, "refundAmount"); ok && refund > 0 {
			return "Booking cancelled", fmt.Sprintf("Your booking was cancelled. A refund of %d is on its way.", refund)
		}
		return "Booking cancelled", "Your booking was cancelled."
	case models.NotifyBookingNoShow:
		if charge, ok := amountField(data, "chargeAmount"); ok && charge > 0 {
			return "Missed booking", fmt.Sprintf("You didn't check in for your booking. A no-show fee of %d applies.", charge)
		}
		return "Missed booking", "You didn't check in for your booking."
	case models.NotifyPaymentSuccess:
		return "Payment received 💸", "We received your payment. Thank you!"
	case models.NotifyPaymentFailed:
		return "Payment failed", "Your payment didn't go through. Please try again from your booking."
	case models.NotifyRefundIssued:
		return "Refund issued", "Your refund has been processed and should arrive within a few business days."
	default:
		return "Studio update", "There's news about your booking."
	}
}

func amountField(data map[string]any, key string) (int64, bool) {
	if data == nil {
		return 0, false
	}
	switch v := data[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}
