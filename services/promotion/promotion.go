// File: services/promotion/promotion.go
package promotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	promotionRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/promotion"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/google/uuid"
)

var (
	// ErrPromoInvalid covers unknown or inactive codes.
	ErrPromoInvalid = utils.NewError(utils.KindPolicyViolation, "PROMO_INVALID", "promotion code is not valid")
	// ErrPromoExpired is returned outside the validity window.
	ErrPromoExpired = utils.NewError(utils.KindPolicyViolation, "PROMO_EXPIRED", "promotion code is outside its validity window")
	// ErrPromoExhausted is returned once the usage limit is reached.
	ErrPromoExhausted = utils.NewError(utils.KindPolicyViolation, "PROMO_EXHAUSTED", "promotion code has no uses left")
	// ErrPromoMinOrder is returned when the order total is below the code's floor.
	ErrPromoMinOrder = utils.NewError(utils.KindPolicyViolation, "PROMO_MIN_ORDER", "order amount is below the promotion's minimum")
)

// Service validates and redeems promotion codes. Redeem and Unredeem bracket
// the booking saga: a rolled-back booking returns its use to the pool.
type Service interface {
	Create(ctx context.Context, promo *models.Promotion) (*models.Promotion, error)
	// Quote validates code against the order amount at the given instant and
	// returns the promotion with the discount it grants.
	Quote(ctx context.Context, code string, orderAmount int64, at time.Time) (*models.Promotion, int64, error)
	Redeem(ctx context.Context, promoID string) error
	Unredeem(ctx context.Context, promoID string) error
}

// DefaultService is the production implementation backed by MongoDB.
type DefaultService struct {
	Promos promotionRepo.PromotionRepository
}

func NewDefaultService(repo promotionRepo.PromotionRepository) *DefaultService {
	return &DefaultService{Promos: repo}
}

func (s *DefaultService) Create(ctx context.Context, promo *models.Promotion) (*models.Promotion, error) {
	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))
	if promo.Code == "" {
		return nil, utils.NewError(utils.KindValidation, "INVALID_PROMOTION", "promotion code is required")
	}
	if promo.DiscountType != models.DiscountPercentage && promo.DiscountType != models.DiscountFixed {
		return nil, utils.NewError(utils.KindValidation, "INVALID_PROMOTION", "unknown discount type")
	}
	if promo.DiscountValue <= 0 {
		return nil, utils.NewError(utils.KindValidation, "INVALID_PROMOTION", "discount value must be positive")
	}
	if promo.DiscountType == models.DiscountPercentage && promo.DiscountValue > 100 {
		return nil, utils.NewError(utils.KindValidation, "INVALID_PROMOTION", "percentage discount cannot exceed 100")
	}
	if !promo.ValidUntil.After(promo.ValidFrom) {
		return nil, utils.NewError(utils.KindValidation, "INVALID_PROMOTION", "validity window must end after it starts")
	}
	now := time.Now().UTC()
	promo.ID = uuid.New().String()
	promo.UsedCount = 0
	promo.CreatedAt = now
	promo.UpdatedAt = now
	if err := s.Promos.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	return promo, nil
}

func (s *DefaultService) Quote(ctx context.Context, code string, orderAmount int64, at time.Time) (*models.Promotion, int64, error) {
	promo, err := s.Promos.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, promotionRepo.ErrNotFound) {
			return nil, 0, ErrPromoInvalid
		}
		return nil, 0, fmt.Errorf("get promotion %q: %w", code, err)
	}
	if !promo.IsActive {
		return nil, 0, ErrPromoInvalid
	}
	if at.Before(promo.ValidFrom) || at.After(promo.ValidUntil) {
		return nil, 0, ErrPromoExpired
	}
	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return nil, 0, ErrPromoExhausted
	}
	if orderAmount < promo.MinOrderAmount {
		return nil, 0, ErrPromoMinOrder
	}
	return promo, discountFor(promo, orderAmount), nil
}

// Redeem burns one use. The underlying update re-checks the usage limit, so
// two bookings racing for the last use serialize on the document.
func (s *DefaultService) Redeem(ctx context.Context, promoID string) error {
	if err := s.Promos.IncrementUsage(ctx, promoID); err != nil {
		switch {
		case errors.Is(err, promotionRepo.ErrNotFound):
			return ErrPromoInvalid
		case errors.Is(err, promotionRepo.ErrUsageExhausted):
			return ErrPromoExhausted
		}
		return fmt.Errorf("redeem promotion %s: %w", promoID, err)
	}
	return nil
}

// Unredeem gives one use back when a booking creation rolls back.
func (s *DefaultService) Unredeem(ctx context.Context, promoID string) error {
	if err := s.Promos.DecrementUsage(ctx, promoID); err != nil {
		if errors.Is(err, promotionRepo.ErrNotFound) {
			return ErrPromoInvalid
		}
		return fmt.Errorf("unredeem promotion %s: %w", promoID, err)
	}
	return nil
}

// discountFor computes the discount the promotion grants on orderAmount,
// never exceeding the order itself.
func discountFor(promo *models.Promotion, orderAmount int64) int64 {
	var discount int64
	switch promo.DiscountType {
	case models.DiscountPercentage:
		discount = orderAmount * promo.DiscountValue / 100
		if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
			discount = promo.MaxDiscount
		}
	case models.DiscountFixed:
		discount = promo.DiscountValue
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
