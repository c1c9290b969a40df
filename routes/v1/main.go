package v1

import (
	"time"

	"contests/config"
	"contests/handlers/competitions"
	"contests/handlers/messages"
	"contests/middleware"
	"contests/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register the endpoints for the v1 API
func Register(r *gin.Engine, db *gorm.DB) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter(config.RateLimit)
	rateLimiter.StartSweeper(10 * time.Minute)
	v1.Use(middleware.RateLimiterMiddleware(rateLimiter))

	auth := middleware.AuthMiddleware(db, []byte(config.JWTSecret))

	recipients := services.NewRecipientResolver(db, config.NotifyRecipientID)
	sink := services.NewMessageSink(db, recipients)
	notifier := services.MultiNotifier{sink}
	if email := services.NewEmailService(db, recipients); email.Enabled() {
		notifier = append(notifier, email)
	}

	competitionHandler := competitions.NewHandler(
		services.NewCompetitionService(db),
		services.NewSignupService(db, notifier),
		services.NewScoreService(db),
	)

	RegisterPingRoutes(v1)
	competitions.RegisterRoutes(v1, competitionHandler, auth)
	messages.RegisterRoutes(v1, messages.NewHandler(sink), auth)

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
}
