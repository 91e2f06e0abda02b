// File: handlers/payment.go
package handlers

import (
	"io"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/middleware"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// webhookBodyLimit caps how much of a webhook body is read. Gateway
// payloads are small; anything bigger is garbage.
const webhookBodyLimit = 1 << 20

// PaymentHandler exposes the payment orchestrator over HTTP.
type PaymentHandler struct {
	Orch payment.Orchestrator
}

func NewPaymentHandler(orch payment.Orchestrator) *PaymentHandler {
	return &PaymentHandler{Orch: orch}
}

// OptionsHandler handles POST /api/payments/options/:bookingId.
func (h *PaymentHandler) OptionsHandler(c *gin.Context) {
	options, err := h.Orch.Options(c.Request.Context(), middleware.AuthFrom(c), c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Payment options", options)
}

// CreateSessionHandler handles POST /api/payments/create/:bookingId.
func (h *PaymentHandler) CreateSessionHandler(c *gin.Context) {
	var req models.CreatePaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
			return
		}
	}

	session, err := h.Orch.CreateSession(c.Request.Context(), middleware.AuthFrom(c), c.Param("bookingId"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Payment session created", session)
}

// CreateRemainderHandler handles POST /api/payments/remaining/:bookingId.
func (h *PaymentHandler) CreateRemainderHandler(c *gin.Context) {
	session, err := h.Orch.CreateRemainderSession(c.Request.Context(), middleware.AuthFrom(c), c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Remainder session created", session)
}

// WebhookHandler handles POST /api/payments/webhook. Public endpoint; the
// HMAC signature is the authentication.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		utils.RespondError(c, utils.WrapError(utils.KindValidation, "UNREADABLE_BODY", "failed to read webhook body", err))
		return
	}

	result, err := h.Orch.HandleWebhook(c.Request.Context(), body, c.GetHeader("x-payos-signature"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.GetLogger().Info("webhook processed", zap.String("action", string(result.Action)))
	utils.RespondOK(c, "Webhook processed", result)
}

// GetStatusHandler handles GET /api/payments/:paymentId.
func (h *PaymentHandler) GetStatusHandler(c *gin.Context) {
	p, err := h.Orch.GetStatus(c.Request.Context(), middleware.AuthFrom(c), c.Param("paymentId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Payment", p)
}

// ListForBookingHandler handles GET /api/payments/booking/:bookingId.
func (h *PaymentHandler) ListForBookingHandler(c *gin.Context) {
	payments, err := h.Orch.ListForBooking(c.Request.Context(), middleware.AuthFrom(c), c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Payments", payments)
}

// RefundHandler handles POST /api/payments/:paymentId/refund (staff).
func (h *PaymentHandler) RefundHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.WrapError(utils.KindValidation, "INVALID_BODY", err.Error(), err))
			return
		}
	}

	p, err := h.Orch.RequestRefund(c.Request.Context(), middleware.AuthFrom(c), c.Param("paymentId"), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Refund issued", p)
}
