package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	policyRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/policy"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Store serves the active policy of each type and snapshots them for bookings.
// Reads go through a short-lived in-process cache so the booking hot path does
// not hit the database for documents that change a few times a year.
type Store interface {
	ActiveCancellation(ctx context.Context) (*models.CancellationPolicy, error)
	ActiveNoShow(ctx context.Context) (*models.NoShowPolicy, error)
	Create(ctx context.Context, p *models.Policy) (*models.Policy, error)
	GetByID(ctx context.Context, id string) (*models.Policy, error)
	List(ctx context.Context, policyType models.PolicyType) ([]models.Policy, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// DefaultStore implements Store on top of the policy repository.
type DefaultStore struct {
	Repo  policyRepo.PolicyRepository
	cache *gocache.Cache
}

const (
	cacheKeyCancellation = "policy:cancellation"
	cacheKeyNoShow       = "policy:no_show"

	cacheTTL     = 5 * time.Minute
	cacheSweep   = 10 * time.Minute
	maxTierCount = 10
)

func NewDefaultStore(repo policyRepo.PolicyRepository) *DefaultStore {
	return &DefaultStore{
		Repo:  repo,
		cache: gocache.New(cacheTTL, cacheSweep),
	}
}

// ActiveCancellation returns the active cancellation policy, or nil when none
// has been configured yet. Bookings snapshot a nil policy as "no refund".
func (s *DefaultStore) ActiveCancellation(ctx context.Context) (*models.CancellationPolicy, error) {
	if cached, ok := s.cache.Get(cacheKeyCancellation); ok {
		return cached.(*models.CancellationPolicy), nil
	}
	p, err := s.Repo.GetActive(ctx, models.PolicyCancellation)
	if err != nil {
		if errors.Is(err, policyRepo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load active cancellation policy: %w", err)
	}
	s.cache.Set(cacheKeyCancellation, p.Cancellation, gocache.DefaultExpiration)
	return p.Cancellation, nil
}

// ActiveNoShow returns the active no-show policy, or nil when none has been
// configured yet. A nil snapshot charges the full amount with no grace window.
func (s *DefaultStore) ActiveNoShow(ctx context.Context) (*models.NoShowPolicy, error) {
	if cached, ok := s.cache.Get(cacheKeyNoShow); ok {
		return cached.(*models.NoShowPolicy), nil
	}
	p, err := s.Repo.GetActive(ctx, models.PolicyNoShow)
	if err != nil {
		if errors.Is(err, policyRepo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load active no-show policy: %w", err)
	}
	s.cache.Set(cacheKeyNoShow, p.NoShow, gocache.DefaultExpiration)
	return p.NoShow, nil
}

func (s *DefaultStore) Create(ctx context.Context, p *models.Policy) (*models.Policy, error) {
	if err := validatePolicy(p); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.ID = uuid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Version == 0 {
		p.Version = 1
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}
	s.invalidate(p.Type)
	return p, nil
}

func (s *DefaultStore) GetByID(ctx context.Context, id string) (*models.Policy, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, policyRepo.ErrNotFound) {
			return nil, utils.NewError(utils.KindNotFound, "POLICY_NOT_FOUND", "policy not found")
		}
		return nil, fmt.Errorf("get policy %s: %w", id, err)
	}
	return p, nil
}

func (s *DefaultStore) List(ctx context.Context, policyType models.PolicyType) ([]models.Policy, error) {
	return s.Repo.List(ctx, policyType)
}

func (s *DefaultStore) SetActive(ctx context.Context, id string, active bool) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set policy %s active=%v: %w", id, active, err)
	}
	s.invalidate(p.Type)
	return nil
}

func (s *DefaultStore) invalidate(policyType models.PolicyType) {
	switch policyType {
	case models.PolicyCancellation:
		s.cache.Delete(cacheKeyCancellation)
	case models.PolicyNoShow:
		s.cache.Delete(cacheKeyNoShow)
	}
}

func validatePolicy(p *models.Policy) error {
	switch p.Type {
	case models.PolicyCancellation:
		if p.Cancellation == nil || len(p.Cancellation.Tiers) == 0 {
			return utils.NewError(utils.KindValidation, "POLICY_INVALID", "cancellation policy requires at least one refund tier")
		}
		if len(p.Cancellation.Tiers) > maxTierCount {
			return utils.NewError(utils.KindValidation, "POLICY_INVALID", "too many refund tiers")
		}
		for _, tier := range p.Cancellation.Tiers {
			if tier.HoursBefore < 0 || tier.RefundPercentage < 0 || tier.RefundPercentage > 100 {
				return utils.NewError(utils.KindValidation, "POLICY_INVALID", "refund tier out of range")
			}
		}
	case models.PolicyNoShow:
		ns := p.NoShow
		if ns == nil {
			return utils.NewError(utils.KindValidation, "POLICY_INVALID", "no-show policy body missing")
		}
		if ns.GraceMinutes < 0 {
			return utils.NewError(utils.KindValidation, "POLICY_INVALID", "grace minutes must not be negative")
		}
		switch ns.ChargeType {
		case models.ChargeFull:
		case models.ChargePercentage:
			if ns.ChargePercentage < 0 || ns.ChargePercentage > 100 {
				return utils.NewError(utils.KindValidation, "POLICY_INVALID", "charge percentage out of range")
			}
		case models.ChargeEscalating:
			if ns.BasePercentage < 0 || ns.BasePercentage > 100 || ns.StepPercentage < 0 {
				return utils.NewError(utils.KindValidation, "POLICY_INVALID", "escalating percentages out of range")
			}
		default:
			return utils.NewError(utils.KindValidation, "POLICY_INVALID", "unknown charge type")
		}
	default:
		return utils.NewError(utils.KindValidation, "POLICY_INVALID", "unknown policy type")
	}
	return nil
}
