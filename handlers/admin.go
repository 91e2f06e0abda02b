// File: handlers/admin.go
package handlers

import (
	"time"

	studioRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/inventory"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/policy"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/promotion"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/scheduler"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler groups the staff-side catalog management endpoints:
// studios, slots, equipment, policies and promotions.
type AdminHandler struct {
	Studios   studioRepo.StudioRepository
	Scheduler scheduler.Service
	Inventory inventory.Service
	Policies  policy.Store
	Promos    promotion.Service
}

func NewAdminHandler(
	studios studioRepo.StudioRepository,
	sched scheduler.Service,
	inv inventory.Service,
	policies policy.Store,
	promos promotion.Service,
) *AdminHandler {
	return &AdminHandler{
		Studios:   studios,
		Scheduler: sched,
		Inventory: inv,
		Policies:  policies,
		Promos:    promos,
	}
}

// CreateStudioHandler handles POST /api/admin/studios.
func (h *AdminHandler) CreateStudioHandler(c *gin.Context) {
	var req struct {
		Name             string `json:"name" binding:"required"`
		Description      string `json:"description,omitempty"`
		BasePricePerHour int64  `json:"basePricePerHour" binding:"required,min=1"`
		Capacity         int    `json:"capacity,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	now := time.Now().UTC()
	s := &models.Studio{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Description:      req.Description,
		BasePricePerHour: req.BasePricePerHour,
		Capacity:         req.Capacity,
		Status:           models.StudioActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.Studios.Create(c.Request.Context(), s); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Studio created", s)
}

// ListStudiosHandler handles GET /api/studios (public catalog).
func (h *AdminHandler) ListStudiosHandler(c *gin.Context) {
	studios, err := h.Studios.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Studios", studios)
}

// GetStudioHandler handles GET /api/studios/:id.
func (h *AdminHandler) GetStudioHandler(c *gin.Context) {
	s, err := h.Studios.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindNotFound, "STUDIO_NOT_FOUND", "studio not found", err))
		return
	}
	utils.RespondOK(c, "Studio", s)
}

// SetStudioStatusHandler handles PATCH /api/admin/studios/:id/status.
func (h *AdminHandler) SetStudioStatusHandler(c *gin.Context) {
	var req struct {
		Status models.StudioStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}
	switch req.Status {
	case models.StudioActive, models.StudioInactive, models.StudioMaintenance:
	default:
		utils.RespondError(c, utils.NewError(utils.KindValidation, "INVALID_STATUS", "unknown studio status"))
		return
	}

	if err := h.Studios.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindNotFound, "STUDIO_NOT_FOUND", "studio not found", err))
		return
	}
	utils.RespondOK(c, "Studio status updated", gin.H{"id": c.Param("id"), "status": req.Status})
}

// CreateSlotHandler handles POST /api/admin/slots.
func (h *AdminHandler) CreateSlotHandler(c *gin.Context) {
	var req struct {
		StudioID  string    `json:"studioId" binding:"required"`
		StartTime time.Time `json:"startTime" binding:"required"`
		EndTime   time.Time `json:"endTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	slot, err := h.Scheduler.CreateSlot(c.Request.Context(), req.StudioID, req.StartTime, req.EndTime)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Slot created", slot)
}

// ListSlotsHandler handles GET /api/studios/:id/slots?from=&to=&status=.
func (h *AdminHandler) ListSlotsHandler(c *gin.Context) {
	from, to, err := parseWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var statuses []models.SlotStatus
	if s := c.Query("status"); s != "" {
		statuses = []models.SlotStatus{models.SlotStatus(s)}
	}

	slots, err := h.Scheduler.List(c.Request.Context(), c.Param("id"), from, to, statuses)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Slots", slots)
}

// CreateEquipmentHandler handles POST /api/admin/equipment.
func (h *AdminHandler) CreateEquipmentHandler(c *gin.Context) {
	var req models.Equipment
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	eq, err := h.Inventory.Create(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Equipment created", eq)
}

// ListEquipmentHandler handles GET /api/equipment (public catalog).
func (h *AdminHandler) ListEquipmentHandler(c *gin.Context) {
	items, err := h.Inventory.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Equipment", items)
}

// SetEquipmentMaintenanceHandler handles PATCH /api/admin/equipment/:id/maintenance.
func (h *AdminHandler) SetEquipmentMaintenanceHandler(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	if err := h.Inventory.SetMaintenance(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Maintenance quantity updated", gin.H{"id": c.Param("id"), "maintenanceQty": req.Quantity})
}

// CreatePolicyHandler handles POST /api/admin/policies.
func (h *AdminHandler) CreatePolicyHandler(c *gin.Context) {
	var req models.Policy
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	p, err := h.Policies.Create(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Policy created", p)
}

// ListPoliciesHandler handles GET /api/admin/policies?type=.
func (h *AdminHandler) ListPoliciesHandler(c *gin.Context) {
	policies, err := h.Policies.List(c.Request.Context(), models.PolicyType(c.Query("type")))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Policies", policies)
}

// ActivatePolicyHandler handles PATCH /api/admin/policies/:id/active.
func (h *AdminHandler) ActivatePolicyHandler(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	if err := h.Policies.SetActive(c.Request.Context(), c.Param("id"), req.Active); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Policy updated", gin.H{"id": c.Param("id"), "active": req.Active})
}

// CreatePromotionHandler handles POST /api/admin/promotions.
func (h *AdminHandler) CreatePromotionHandler(c *gin.Context) {
	var req models.Promotion
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	promo, err := h.Promos.Create(c.Request.Context(), &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Promotion created", promo)
}

// QuotePromotionHandler handles POST /api/promotions/quote. Lets the client
// preview a discount before committing to a booking.
func (h *AdminHandler) QuotePromotionHandler(c *gin.Context) {
	var req struct {
		Code        string `json:"code" binding:"required"`
		OrderAmount int64  `json:"orderAmount" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	promo, discount, err := h.Promos.Quote(c.Request.Context(), req.Code, req.OrderAmount, time.Now().UTC())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Promotion quote", gin.H{
		"code":        promo.Code,
		"discount":    discount,
		"finalAmount": req.OrderAmount - discount,
	})
}

// parseWindow turns from/to query params into a concrete interval,
// defaulting to the next 7 days.
func parseWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, to := now, now.AddDate(0, 0, 7)

	var err error
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339, fromStr); err != nil {
			return time.Time{}, time.Time{}, utils.NewError(utils.KindValidation, "INVALID_RANGE", "from must be RFC3339")
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339, toStr); err != nil {
			return time.Time{}, time.Time{}, utils.NewError(utils.KindValidation, "INVALID_RANGE", "to must be RFC3339")
		}
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, utils.NewError(utils.KindValidation, "INVALID_RANGE", "to must be after from")
	}
	return from, to, nil
}
