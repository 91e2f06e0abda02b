package promotion

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	promotionRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/promotion"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

var promoNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

// memPromoRepo mirrors the mongo repository's conditional usage counter.
type memPromoRepo struct {
	mu    sync.Mutex
	items map[string]*models.Promotion
}

func newMemPromoRepo() *memPromoRepo {
	return &memPromoRepo{items: map[string]*models.Promotion{}}
}

func (m *memPromoRepo) add(p models.Promotion) *models.Promotion {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.items[p.ID] = &cp
	return &cp
}

func (m *memPromoRepo) Create(ctx context.Context, p *models.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPromoRepo) GetByCode(ctx context.Context, code string) (*models.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, p := range m.items {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, promotionRepo.ErrNotFound
}

func (m *memPromoRepo) IncrementUsage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return promotionRepo.ErrNotFound
	}
	if p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit {
		return promotionRepo.ErrUsageExhausted
	}
	p.UsedCount++
	return nil
}

func (m *memPromoRepo) DecrementUsage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return promotionRepo.ErrNotFound
	}
	if p.UsedCount > 0 {
		p.UsedCount--
	}
	return nil
}

var _ promotionRepo.PromotionRepository = (*memPromoRepo)(nil)

// summerPromo is a 10% code capped at 100k, floor 200k, 5 uses, valid for
// May and June 2026.
func summerPromo() models.Promotion {
	return models.Promotion{
		ID:             "promo-1",
		Code:           "SUMMER10",
		DiscountType:   models.DiscountPercentage,
		DiscountValue:  10,
		MaxDiscount:    100_000,
		MinOrderAmount: 200_000,
		UsageLimit:     5,
		ValidFrom:      time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		IsActive:       true,
	}
}

func newPromoService() (*DefaultService, *memPromoRepo) {
	repo := newMemPromoRepo()
	return NewDefaultService(repo), repo
}

func TestCreatePromotion(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes the code and resets the counter", func(t *testing.T) {
		svc, repo := newPromoService()
		created, err := svc.Create(ctx, &models.Promotion{
			Code:          "  newyear25 ",
			DiscountType:  models.DiscountPercentage,
			DiscountValue: 25,
			UsedCount:     7,
			ValidFrom:     promoNow,
			ValidUntil:    promoNow.Add(30 * 24 * time.Hour),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "NEWYEAR25", created.Code)
		assert.Zero(t, created.UsedCount)

		stored, err := repo.GetByCode(ctx, "newyear25")
		require.NoError(t, err)
		assert.Equal(t, created.ID, stored.ID)
	})

	invalid := []struct {
		name  string
		promo models.Promotion
	}{
		{"empty code", models.Promotion{DiscountType: models.DiscountFixed, DiscountValue: 100, ValidFrom: promoNow, ValidUntil: promoNow.Add(time.Hour)}},
		{"unknown discount type", models.Promotion{Code: "X", DiscountType: "bogo", DiscountValue: 1, ValidFrom: promoNow, ValidUntil: promoNow.Add(time.Hour)}},
		{"non-positive value", models.Promotion{Code: "X", DiscountType: models.DiscountFixed, DiscountValue: 0, ValidFrom: promoNow, ValidUntil: promoNow.Add(time.Hour)}},
		{"percentage above 100", models.Promotion{Code: "X", DiscountType: models.DiscountPercentage, DiscountValue: 120, ValidFrom: promoNow, ValidUntil: promoNow.Add(time.Hour)}},
		{"inverted validity window", models.Promotion{Code: "X", DiscountType: models.DiscountFixed, DiscountValue: 100, ValidFrom: promoNow, ValidUntil: promoNow}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newPromoService()
			promo := tc.promo
			_, err := svc.Create(ctx, &promo)
			require.Error(t, err)
			assert.Equal(t, utils.KindValidation, utils.KindOf(err))
		})
	}
}

func TestQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("percentage discount", func(t *testing.T) {
		svc, repo := newPromoService()
		repo.add(summerPromo())

		_, discount, err := svc.Quote(ctx, "SUMMER10", 500_000, promoNow)
		require.NoError(t, err)
		assert.Equal(t, int64(50_000), discount)
	})

	t.Run("percentage rounds down", func(t *testing.T) {
		svc, repo := newPromoService()
		repo.add(summerPromo())

		_, discount, err := svc.Quote(ctx, "SUMMER10", 200_009, promoNow)
		require.NoError(t, err)
		assert.Equal(t, int64(20_000), discount)
	})

	t.Run("cap limits large orders", func(t *testing.T) {
		svc, repo := newPromoService()
		repo.add(summerPromo())

		_, discount, err := svc.Quote(ctx, "SUMMER10", 2_000_000, promoNow)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), discount, "10% of 2M exceeds the 100k cap")
	})

	t.Run("fixed discount never exceeds the order", func(t *testing.T) {
		svc, repo := newPromoService()
		promo := summerPromo()
		promo.DiscountType = models.DiscountFixed
		promo.DiscountValue = 150_000
		promo.MinOrderAmount = 0
		repo.add(promo)

		_, discount, err := svc.Quote(ctx, "SUMMER10", 1_000_000, promoNow)
		require.NoError(t, err)
		assert.Equal(t, int64(150_000), discount)

		_, discount, err = svc.Quote(ctx, "SUMMER10", 90_000, promoNow)
		require.NoError(t, err)
		assert.Equal(t, int64(90_000), discount, "the discount is clamped to the order amount")
	})

	t.Run("lookup is case insensitive", func(t *testing.T) {
		svc, repo := newPromoService()
		repo.add(summerPromo())

		promo, _, err := svc.Quote(ctx, "  summer10 ", 500_000, promoNow)
		require.NoError(t, err)
		assert.Equal(t, "promo-1", promo.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc, _ := newPromoService()
		_, _, err := svc.Quote(ctx, "GHOST", 500_000, promoNow)
		assert.ErrorIs(t, err, ErrPromoInvalid)
	})

	t.Run("inactive code", func(t *testing.T) {
		svc, repo := newPromoService()
		promo := summerPromo()
		promo.IsActive = false
		repo.add(promo)

		_, _, err := svc.Quote(ctx, "SUMMER10", 500_000, promoNow)
		assert.ErrorIs(t, err, ErrPromoInvalid)
	})

	t.Run("outside the validity window", func(t *testing.T) {
		svc, repo := newPromoService()
		promo := summerPromo()
		repo.add(promo)

		_, _, err := svc.Quote(ctx, "SUMMER10", 500_000, promo.ValidFrom.Add(-time.Second))
		assert.ErrorIs(t, err, ErrPromoExpired)

		_, _, err = svc.Quote(ctx, "SUMMER10", 500_000, promo.ValidUntil.Add(time.Second))
		assert.ErrorIs(t, err, ErrPromoExpired)

		// The window is inclusive at both edges.
		_, _, err = svc.Quote(ctx, "SUMMER10", 500_000, promo.ValidUntil)
		assert.NoError(t, err)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		svc, repo := newPromoService()
		promo := summerPromo()
		promo.UsedCount = promo.UsageLimit
		repo.add(promo)

		_, _, err := svc.Quote(ctx, "SUMMER10", 500_000, promoNow)
		assert.ErrorIs(t, err, ErrPromoExhausted)
	})

	t.Run("zero limit means unlimited", func(t *testing.T) {
		svc, repo := newPromoService()
		promo := summerPromo()
		promo.UsageLimit = 0
		promo.UsedCount = 10_000
		repo.add(promo)

		_, _, err := svc.Quote(ctx, "SUMMER10", 500_000, promoNow)
		assert.NoError(t, err)
	})

	t.Run("order below the floor", func(t *testing.T) {
		svc, repo := newPromoService()
		repo.add(summerPromo())

		_, _, err := svc.Quote(ctx, "SUMMER10", 199_999, promoNow)
		assert.ErrorIs(t, err, ErrPromoMinOrder)
	})
}

func TestRedeemAndUnredeem(t *testing.T) {
	ctx := context.Background()

	t.Run("redemptions stop at the limit", func(t *testing.T) {
		svc, repo := newPromoService()
		promo := summerPromo()
		promo.UsageLimit = 2
		repo.add(promo)

		require.NoError(t, svc.Redeem(ctx, "promo-1"))
		require.NoError(t, svc.Redeem(ctx, "promo-1"))
		assert.ErrorIs(t, svc.Redeem(ctx, "promo-1"), ErrPromoExhausted)
		assert.Equal(t, 2, repo.items["promo-1"].UsedCount)
	})

	t.Run("unredeem returns the use to the pool", func(t *testing.T) {
		svc, repo := newPromoService()
		promo := summerPromo()
		promo.UsageLimit = 1
		promo.UsedCount = 1
		repo.add(promo)

		require.NoError(t, svc.Unredeem(ctx, "promo-1"))
		assert.Equal(t, 0, repo.items["promo-1"].UsedCount)
		assert.NoError(t, svc.Redeem(ctx, "promo-1"))
	})

	t.Run("unredeem clamps at zero", func(t *testing.T) {
		svc, repo := newPromoService()
		repo.add(summerPromo())

		require.NoError(t, svc.Unredeem(ctx, "promo-1"))
		assert.Equal(t, 0, repo.items["promo-1"].UsedCount)
	})

	t.Run("unknown promotion", func(t *testing.T) {
		svc, _ := newPromoService()
		assert.ErrorIs(t, svc.Redeem(ctx, "ghost"), ErrPromoInvalid)
		assert.ErrorIs(t, svc.Unredeem(ctx, "ghost"), ErrPromoInvalid)
	})
}
