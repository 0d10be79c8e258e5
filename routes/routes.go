package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"clubvoice/handlers"
	"clubvoice/middleware"
)

// RegisterWebhookRoutes registers the voice-provider webhook. It is
// authenticated by request signature, not JWT, so it stays outside the
// API group.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/webhook/voice", hb.VoiceWebhookHandler)
}

// RegisterClubRoutes registers club management endpoints.
func RegisterClubRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	clubs := api.Group("/clubs")
	{
		clubs.POST("", middleware.RequireRole("admin"), hb.CreateClubHandler)
		clubs.GET("", hb.ListClubsHandler)
		clubs.GET("/:id", hb.GetClubHandler)
		clubs.PUT("/:id", hb.UpdateClubHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	bookings := api.Group("/bookings")
	{
		bookings.POST("", hb.CreateBookingHandler)
		bookings.GET("", hb.ListBookingsHandler)
		bookings.GET("/availability", hb.CheckAvailabilityHandler)
		bookings.GET("/:id", hb.GetBookingHandler)
		bookings.PATCH("/:id", hb.ModifyBookingHandler)
		bookings.POST("/:id/cancel", hb.CancelBookingHandler)
		bookings.POST("/:id/confirm", hb.ConfirmBookingHandler)
		bookings.POST("/:id/complete", hb.CompleteBookingHandler)
	}
}

// RegisterCustomerRoutes registers customer funnel endpoints.
func RegisterCustomerRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	customers := api.Group("/customers")
	{
		customers.GET("", hb.ListCustomersHandler)
		customers.GET("/:id", hb.GetCustomerHandler)
		customers.PUT("/:id", hb.UpdateCustomerHandler)
	}
}

// RegisterConversationRoutes registers read-only call history endpoints.
func RegisterConversationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	conversations := api.Group("/conversations")
	{
		conversations.GET("", hb.ListConversationsHandler)
		conversations.GET("/:id", hb.GetConversationHandler)
	}
}

// RegisterNotificationRoutes registers delivery inspection and the
// manual retry/cancel operations.
func RegisterNotificationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("", hb.ListNotificationsHandler)
		notifications.GET("/:id", hb.GetNotificationHandler)
		notifications.POST("/:id/retry", hb.RetryNotificationHandler)
		notifications.POST("/:id/cancel", hb.CancelNotificationHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm ClubVoice"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Webhook-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, hb)

	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	RegisterClubRoutes(api, hb)
	RegisterBookingRoutes(api, hb)
	RegisterCustomerRoutes(api, hb)
	RegisterConversationRoutes(api, hb)
	RegisterNotificationRoutes(api, hb)
	api.GET("/dashboard", hb.DashboardHandler)
}
