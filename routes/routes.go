package routes

import (
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/handlers"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.RegisterHandler)
		api.POST("/login", hb.LoginHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.Authenticate())
		api.POST("/logout", hb.LogoutHandler)
		api.GET("/me", hb.MeHandler)
	}
}

// RegisterCatalogRoutes registers the public browse endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/studios", hb.ListStudiosHandler)
		api.GET("/studios/:id", hb.GetStudioHandler)
		api.GET("/studios/:id/slots", hb.ListSlotsHandler)
		api.GET("/equipment", hb.ListEquipmentHandler)
		api.POST("/promotions/quote", hb.QuotePromotionHandler)
	}
}

// RegisterNotificationRoutes registers the per-user feed.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.Authenticate())
		api.GET("", hb.RecentNotificationsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for staff catalog management.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	admin := r.Group("/api/admin")
	{
		admin.Use(middleware.Authenticate(), middleware.RequireStaff())
		admin.POST("/studios", hb.CreateStudioHandler)
		admin.PATCH("/studios/:id/status", hb.SetStudioStatusHandler)
		admin.POST("/slots", hb.CreateSlotHandler)
		admin.POST("/equipment", hb.CreateEquipmentHandler)
		admin.PATCH("/equipment/:id/maintenance", hb.SetEquipmentMaintenanceHandler)
		admin.POST("/policies", hb.CreatePolicyHandler)
		admin.GET("/policies", hb.ListPoliciesHandler)
		admin.PATCH("/policies/:id/active", hb.ActivatePolicyHandler)
		admin.POST("/promotions", hb.CreatePromotionHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	origins := []string{"*"}
	if config.AppConfig.FrontendURL != "" {
		origins = []string{config.AppConfig.FrontendURL}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "x-payos-signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
