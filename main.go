package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"clubvoice/config"
	"clubvoice/cron"
	"clubvoice/database"
	bookingRepoPkg "clubvoice/database/repository/booking"
	clubRepoPkg "clubvoice/database/repository/club"
	conversationRepoPkg "clubvoice/database/repository/conversation"
	customerRepoPkg "clubvoice/database/repository/customer"
	notificationRepoPkg "clubvoice/database/repository/notification"
	"clubvoice/handlers"
	"clubvoice/routes"
	"clubvoice/services/booking"
	"clubvoice/services/callsession"
	"clubvoice/services/marketplace"
	"clubvoice/services/notification"
	"clubvoice/services/scheduling"
	"clubvoice/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	clubRepo := clubRepoPkg.NewMongoClubRepo()
	customerRepo := customerRepoPkg.NewMongoCustomerRepo()
	conversationRepo := conversationRepoPkg.NewMongoConversationRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()

	// Background task client.
	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})
	defer taskClient.Close()

	// services.
	dispatcher, err := notification.NewDispatcher(notificationRepo, notification.NewHTTPSender(), taskClient)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification dispatcher: %v", err)
	}

	checker := scheduling.NewChecker(bookingRepo, scheduling.Policy{
		SlotGranularity: config.SlotGranularity(),
		MinDuration:     config.MinSlotDuration(),
	})
	bookingService := &booking.DefaultBookingService{
		Repo:              bookingRepo,
		ClubRepo:          clubRepo,
		Checker:           checker,
		Locks:             scheduling.NewLockTable(),
		Events:            dispatcher,
		Enqueuer:          taskClient,
		ReminderLead:      time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour,
		AlternativeProbes: config.AppConfig.AlternativeProbes,
	}

	sessionService, err := callsession.NewDefaultService(
		conversationRepo,
		customerRepo,
		clubRepo,
		bookingService,
		dispatcher,
		utils.GetCacheClient(),
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize call session service: %v", err)
	}

	syncer, err := marketplace.NewSyncer(bookingRepo, clubRepo, marketplace.NewHTTPClient())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize marketplace syncer: %v", err)
	}

	// Background worker for delivery attempts, syncs and reminders.
	cron.InitWorker(cron.Deps{
		Notifier: dispatcher,
		Syncer:   syncer,
		Bookings: bookingRepo,
		Clubs:    clubRepo,
	})

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Sessions:     sessionService,
		Bookings:     bookingService,
		Notifier:     dispatcher,
		ClubRepo:     clubRepo,
		CustomerRepo: customerRepo,
		BookingRepo:  bookingRepo,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("Starting server on %s...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: forced shutdown: %v", err)
	}
	logger.Sugar().Info("Server exited")
}
