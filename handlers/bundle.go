// File: handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct so routes can
// be registered from a single place.
type HandlerBundle struct {
	// Account endpoints
	RegisterHandler gin.HandlerFunc
	LoginHandler    gin.HandlerFunc
	LogoutHandler   gin.HandlerFunc
	MeHandler       gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler    gin.HandlerFunc
	GetBookingHandler       gin.HandlerFunc
	ListBookingsHandler     gin.HandlerFunc
	CancelBookingHandler    gin.HandlerFunc
	ConfirmBookingHandler   gin.HandlerFunc
	CheckInHandler          gin.HandlerFunc
	CheckOutHandler         gin.HandlerFunc
	NoShowHandler           gin.HandlerFunc
	ExtensionOptionsHandler gin.HandlerFunc
	ExtendBookingHandler    gin.HandlerFunc
	UpdateBookingHandler    gin.HandlerFunc

	// Payment endpoints
	PaymentOptionsHandler  gin.HandlerFunc
	CreateSessionHandler   gin.HandlerFunc
	CreateRemainderHandler gin.HandlerFunc
	WebhookHandler         gin.HandlerFunc
	GetPaymentHandler      gin.HandlerFunc
	ListPaymentsHandler    gin.HandlerFunc
	RefundHandler          gin.HandlerFunc

	// Catalog endpoints (public)
	ListStudiosHandler    gin.HandlerFunc
	GetStudioHandler      gin.HandlerFunc
	ListSlotsHandler      gin.HandlerFunc
	ListEquipmentHandler  gin.HandlerFunc
	QuotePromotionHandler gin.HandlerFunc

	// Admin endpoints
	CreateStudioHandler            gin.HandlerFunc
	SetStudioStatusHandler         gin.HandlerFunc
	CreateSlotHandler              gin.HandlerFunc
	CreateEquipmentHandler         gin.HandlerFunc
	SetEquipmentMaintenanceHandler gin.HandlerFunc
	CreatePolicyHandler            gin.HandlerFunc
	ListPoliciesHandler            gin.HandlerFunc
	ActivatePolicyHandler          gin.HandlerFunc
	CreatePromotionHandler         gin.HandlerFunc

	// Notification endpoints
	RecentNotificationsHandler gin.HandlerFunc
}
