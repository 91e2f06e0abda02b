// File: main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/config"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/cron"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database"
	bookingRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	equipmentRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/equipment"
	paymentRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/payment"
	policyRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/policy"
	promotionRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/promotion"
	slotRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/slot"
	studioRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/studio"
	userRepoPkg "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/user"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/handlers"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/routes"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/booking"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/gateway"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/inventory"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/notification"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/policy"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/promotion"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/scheduler"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/user"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	utils.InitCache()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	slotRepo := slotRepoPkg.NewMongoSlotRepo()
	studioRepo := studioRepoPkg.NewMongoStudioRepo()
	equipmentRepo := equipmentRepoPkg.NewMongoEquipmentRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()
	policyRepo := policyRepoPkg.NewMongoPolicyRepo()
	promotionRepo := promotionRepoPkg.NewMongoPromotionRepo()
	usersRepo := userRepoPkg.NewMongoUserRepo()

	// asynq client for dispatching background tasks.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAsynqDB,
	})
	defer asynqClient.Close()

	// services.
	notifSvc, err := notification.NewDefaultNotificationService(utils.GetCacheClient())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}
	dispatcher := notification.NewAsynqDispatcher(asynqClient)

	schedulerSvc := scheduler.NewDefaultService(slotRepo, studioRepo, nil)
	inventorySvc := inventory.NewDefaultService(equipmentRepo)
	policyStore := policy.NewDefaultStore(policyRepo)
	promoSvc := promotion.NewDefaultService(promotionRepo)
	gatewayClient := gateway.NewHTTPClient()

	engine := booking.NewDefaultEngine(
		bookingRepo,
		paymentRepo,
		usersRepo,
		studioRepo,
		schedulerSvc,
		inventorySvc,
		policyStore,
		promoSvc,
		dispatcher,
		nil,
	)

	orchestrator := payment.NewDefaultOrchestrator(
		paymentRepo,
		bookingRepo,
		engine,
		gatewayClient,
		dispatcher,
		nil,
	)
	// The orchestrator processes refunds for cancellations and no-shows;
	// wired after construction because it also depends on the engine.
	engine.Refunds = orchestrator

	accountSvc := &user.DefaultUserService{
		Repo:     usersRepo,
		Sessions: utils.GetCacheClient(),
	}

	// handlers.
	authHandler := handlers.NewAuthHandler(accountSvc)
	bookingHandler := handlers.NewBookingHandler(engine, orchestrator)
	paymentHandler := handlers.NewPaymentHandler(orchestrator)
	adminHandler := handlers.NewAdminHandler(studioRepo, schedulerSvc, inventorySvc, policyStore, promoSvc)
	notificationHandler := handlers.NewNotificationHandler(notifSvc)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Account endpoints.
		RegisterHandler: authHandler.RegisterHandler,
		LoginHandler:    authHandler.LoginHandler,
		LogoutHandler:   authHandler.LogoutHandler,
		MeHandler:       authHandler.MeHandler,

		// Booking endpoints.
		CreateBookingHandler:    bookingHandler.CreateHandler,
		GetBookingHandler:       bookingHandler.GetHandler,
		ListBookingsHandler:     bookingHandler.ListHandler,
		CancelBookingHandler:    bookingHandler.CancelHandler,
		ConfirmBookingHandler:   bookingHandler.ConfirmHandler,
		CheckInHandler:          bookingHandler.CheckInHandler,
		CheckOutHandler:         bookingHandler.CheckOutHandler,
		NoShowHandler:           bookingHandler.NoShowHandler,
		ExtensionOptionsHandler: bookingHandler.ExtensionOptionsHandler,
		ExtendBookingHandler:    bookingHandler.ExtendHandler,
		UpdateBookingHandler:    bookingHandler.UpdateHandler,

		// Payment endpoints.
		PaymentOptionsHandler:  paymentHandler.OptionsHandler,
		CreateSessionHandler:   paymentHandler.CreateSessionHandler,
		CreateRemainderHandler: paymentHandler.CreateRemainderHandler,
		WebhookHandler:         paymentHandler.WebhookHandler,
		GetPaymentHandler:      paymentHandler.GetStatusHandler,
		ListPaymentsHandler:    paymentHandler.ListForBookingHandler,
		RefundHandler:          paymentHandler.RefundHandler,

		// Catalog endpoints.
		ListStudiosHandler:    adminHandler.ListStudiosHandler,
		GetStudioHandler:      adminHandler.GetStudioHandler,
		ListSlotsHandler:      adminHandler.ListSlotsHandler,
		ListEquipmentHandler:  adminHandler.ListEquipmentHandler,
		QuotePromotionHandler: adminHandler.QuotePromotionHandler,

		// Admin endpoints.
		CreateStudioHandler:            adminHandler.CreateStudioHandler,
		SetStudioStatusHandler:         adminHandler.SetStudioStatusHandler,
		CreateSlotHandler:              adminHandler.CreateSlotHandler,
		CreateEquipmentHandler:         adminHandler.CreateEquipmentHandler,
		SetEquipmentMaintenanceHandler: adminHandler.SetEquipmentMaintenanceHandler,
		CreatePolicyHandler:            adminHandler.CreatePolicyHandler,
		ListPoliciesHandler:            adminHandler.ListPoliciesHandler,
		ActivatePolicyHandler:          adminHandler.ActivatePolicyHandler,
		CreatePromotionHandler:         adminHandler.CreatePromotionHandler,

		// Notification endpoints.
		RecentNotificationsHandler: notificationHandler.RecentHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background worker: queued notifications, payment expiry sweep,
	// no-show scan.
	cron.InitSweepWorker(notifSvc, orchestrator, engine)

	// Start the HTTP server.
	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
