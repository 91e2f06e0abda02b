// File: handlers/booking.go
package handlers

import (
	"strconv"

	bookingRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/middleware"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/booking"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Engine booking.Engine
	Orch   payment.Orchestrator
}

func NewBookingHandler(engine booking.Engine, orch payment.Orchestrator) *BookingHandler {
	return &BookingHandler{Engine: engine, Orch: orch}
}

// CreateHandler handles POST /api/bookings.
func (h *BookingHandler) CreateHandler(c *gin.Context) {
	auth := middleware.AuthFrom(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	b, err := h.Engine.Create(c.Request.Context(), auth, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// The payment options ride along so the client can open checkout
	// without a second round trip.
	options, err := h.Orch.Options(c.Request.Context(), auth, b.ID)
	if err != nil {
		utils.GetLogger().Warn("failed to compute payment options", zap.String("bookingId", b.ID), zap.Error(err))
		options = nil
	}

	utils.RespondCreated(c, "Booking created", gin.H{
		"booking":        b,
		"paymentOptions": options,
	})
}

// GetHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetHandler(c *gin.Context) {
	b, err := h.Engine.Get(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Booking", b)
}

// ListHandler handles GET /api/bookings?status=&page=&limit=.
func (h *BookingHandler) ListHandler(c *gin.Context) {
	q := bookingRepo.ListQuery{
		Status: models.BookingStatus(c.Query("status")),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if customer := c.Query("customerId"); customer != "" {
		q.CustomerID = customer
	}

	items, total, err := h.Engine.List(c.Request.Context(), middleware.AuthFrom(c), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Bookings", gin.H{
		"items": items,
		"total": total,
		"page":  q.Page,
		"limit": q.Limit,
	})
}

// CancelHandler handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var req models.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
			return
		}
	}

	result, err := h.Engine.Cancel(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Booking cancelled", result)
}

// ConfirmHandler handles POST /api/bookings/:id/confirm. Staff escape hatch
// for bookings settled outside the gateway (cash at the desk).
func (h *BookingHandler) ConfirmHandler(c *gin.Context) {
	b, err := h.Engine.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Booking confirmed", b)
}

// CheckInHandler handles POST /api/bookings/:id/check-in.
func (h *BookingHandler) CheckInHandler(c *gin.Context) {
	b, err := h.Engine.CheckIn(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Checked in", b)
}

// CheckOutHandler handles POST /api/bookings/:id/check-out.
func (h *BookingHandler) CheckOutHandler(c *gin.Context) {
	b, err := h.Engine.CheckOut(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Checked out", b)
}

// NoShowHandler handles POST /api/bookings/:id/no-show.
func (h *BookingHandler) NoShowHandler(c *gin.Context) {
	var req models.NoShowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
			return
		}
	}

	b, err := h.Engine.MarkNoShow(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"), req.CheckInTime)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Marked as no-show", b)
}

// ExtensionOptionsHandler handles GET /api/bookings/:id/extension.
func (h *BookingHandler) ExtensionOptionsHandler(c *gin.Context) {
	headroom, err := h.Engine.ExtensionOptions(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Extension availability", headroom)
}

// ExtendHandler handles POST /api/bookings/:id/extend.
func (h *BookingHandler) ExtendHandler(c *gin.Context) {
	var req models.ExtendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	result, err := h.Engine.Extend(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"), req.NewEndTime)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Booking extended", result)
}

// UpdateHandler handles PATCH /api/bookings/:id.
func (h *BookingHandler) UpdateHandler(c *gin.Context) {
	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
		return
	}

	b, err := h.Engine.Update(c.Request.Context(), middleware.AuthFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Booking updated", b)
}
