// File: services/inventory/inventory.go
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	equipmentRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/equipment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEquipmentNotFound is returned when the equipment id resolves to nothing.
	ErrEquipmentNotFound = utils.NewError(utils.KindNotFound, "EQUIPMENT_NOT_FOUND", "equipment not found")
	// ErrInsufficientStock is returned when fewer units are available than requested.
	ErrInsufficientStock = utils.NewError(utils.KindConflict, "INSUFFICIENT_STOCK", "not enough units of this equipment are available")
	// ErrInvalidQuantity rejects zero or negative quantities.
	ErrInvalidQuantity = utils.NewError(utils.KindValidation, "INVALID_QUANTITY", "quantity must be at least 1")
)

// Service guards the equipment stock counters. Reserve and Release are the
// only mutations the booking engine performs; maintenance moves are a staff
// operation.
type Service interface {
	Create(ctx context.Context, eq *models.Equipment) (*models.Equipment, error)
	Get(ctx context.Context, id string) (*models.Equipment, error)
	List(ctx context.Context) ([]models.Equipment, error)
	Reserve(ctx context.Context, id string, qty int) error
	Release(ctx context.Context, id string, qty int) error
	SetMaintenance(ctx context.Context, id string, qty int) error
}

// DefaultService is the production implementation backed by MongoDB.
type DefaultService struct {
	Equipment equipmentRepo.EquipmentRepository
}

func NewDefaultService(repo equipmentRepo.EquipmentRepository) *DefaultService {
	return &DefaultService{Equipment: repo}
}

func (s *DefaultService) Create(ctx context.Context, eq *models.Equipment) (*models.Equipment, error) {
	eq.Name = strings.TrimSpace(eq.Name)
	if eq.Name == "" {
		return nil, utils.NewError(utils.KindValidation, "INVALID_EQUIPMENT", "equipment name is required")
	}
	if eq.TotalQty < 0 || eq.PricePerHour < 0 {
		return nil, utils.NewError(utils.KindValidation, "INVALID_EQUIPMENT", "quantities and prices must not be negative")
	}
	now := time.Now().UTC()
	eq.ID = uuid.New().String()
	eq.MaintenanceQty = 0
	eq.InUseQty = 0
	eq.CreatedAt = now
	eq.UpdatedAt = now
	if err := s.Equipment.Create(ctx, eq); err != nil {
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	return eq, nil
}

func (s *DefaultService) Get(ctx context.Context, id string) (*models.Equipment, error) {
	eq, err := s.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, equipmentRepo.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("get equipment %s: %w", id, err)
	}
	return eq, nil
}

func (s *DefaultService) List(ctx context.Context) ([]models.Equipment, error) {
	return s.Equipment.List(ctx)
}

// Reserve takes qty units out of the available pool. The decrement is a
// single conditional update, so two bookings racing for the last unit cannot
// both succeed.
func (s *DefaultService) Reserve(ctx context.Context, id string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if err := s.Equipment.Reserve(ctx, id, qty); err != nil {
		switch {
		case errors.Is(err, equipmentRepo.ErrNotFound):
			return ErrEquipmentNotFound
		case errors.Is(err, equipmentRepo.ErrInsufficientStock):
			return ErrInsufficientStock
		}
		return fmt.Errorf("reserve %d of equipment %s: %w", qty, id, err)
	}
	return nil
}

// Release returns qty units to the pool, clamping at zero in-use so a repeated
// compensation cannot drive the counter negative.
func (s *DefaultService) Release(ctx context.Context, id string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if err := s.Equipment.Release(ctx, id, qty); err != nil {
		if errors.Is(err, equipmentRepo.ErrNotFound) {
			return ErrEquipmentNotFound
		}
		return fmt.Errorf("release %d of equipment %s: %w", qty, id, err)
	}
	return nil
}

func (s *DefaultService) SetMaintenance(ctx context.Context, id string, qty int) error {
	if qty < 0 {
		return utils.NewError(utils.KindValidation, "INVALID_QUANTITY", "maintenance quantity must not be negative")
	}
	if err := s.Equipment.SetMaintenance(ctx, id, qty); err != nil {
		switch {
		case errors.Is(err, equipmentRepo.ErrNotFound):
			return ErrEquipmentNotFound
		case errors.Is(err, equipmentRepo.ErrInsufficientStock):
			return ErrInsufficientStock
		}
		return fmt.Errorf("set maintenance %d on equipment %s: %w", qty, id, err)
	}
	utils.GetLogger().Info("equipment maintenance updated", zap.String("equipmentId", id), zap.Int("maintenanceQty", qty))
	return nil
}
