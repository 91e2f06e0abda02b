package routes

import (
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/handlers"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookings := r.Group("/api/bookings")
	{
		bookings.Use(middleware.RateLimitMiddleware(), middleware.Authenticate())
		bookings.POST("", hb.CreateBookingHandler)
		bookings.GET("", hb.ListBookingsHandler)
		bookings.GET("/:id", hb.GetBookingHandler)
		bookings.POST("/:id/cancel", hb.CancelBookingHandler)
		bookings.GET("/:id/extension", hb.ExtensionOptionsHandler)
		bookings.POST("/:id/extend", hb.ExtendBookingHandler)

		// Front-desk operations.
		staff := bookings.Group("")
		staff.Use(middleware.RequireStaff())
		staff.POST("/:id/confirm", hb.ConfirmBookingHandler)
		staff.POST("/:id/check-in", hb.CheckInHandler)
		staff.POST("/:id/check-out", hb.CheckOutHandler)
		staff.POST("/:id/no-show", hb.NoShowHandler)
		staff.PATCH("/:id", hb.UpdateBookingHandler)
	}
}

// RegisterPaymentRoutes sets up the payment endpoints. The webhook stays
// outside the auth group: the gateway signs, it does not log in.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payments/webhook", hb.WebhookHandler)

	payments := r.Group("/api/payments")
	{
		payments.Use(middleware.RateLimitMiddleware(), middleware.Authenticate())
		payments.POST("/options/:bookingId", hb.PaymentOptionsHandler)
		payments.POST("/create/:bookingId", hb.CreateSessionHandler)
		payments.POST("/remaining/:bookingId", hb.CreateRemainderHandler)
		payments.GET("/booking/:bookingId", hb.ListPaymentsHandler)
		payments.GET("/:paymentId", hb.GetPaymentHandler)

		staff := payments.Group("")
		staff.Use(middleware.RequireStaff())
		staff.POST("/:paymentId/refund", hb.RefundHandler)
	}
}
