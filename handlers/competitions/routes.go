package competitions

import (
	"contests/middleware"
	"contests/services"

	"github.com/gin-gonic/gin"
)

// Handler serves the competition endpoints
type Handler struct {
	competitions *services.CompetitionService
	signups      *services.SignupService
	scores       *services.ScoreService
	publish      func(competitionID uint, updateType string, scoreboard []services.ScoreRow)
}

func NewHandler(competitions *services.CompetitionService, signups *services.SignupService, scores *services.ScoreService) *Handler {
	return &Handler{
		competitions: competitions,
		signups:      signups,
		scores:       scores,
		publish:      broadcastScoreboard,
	}
}

// RegisterRoutes registers all routes related to competitions
// r: the RouterGroup to which the routes are added
// auth: the middleware authenticating the caller
func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	competitions := r.Group("/competitions")
	competitions.Use(auth)
	{
		competitions.GET("", h.GetAllCompetitions)
		competitions.POST("/:id/signup", h.SignUp)
		competitions.GET("/:id/score", h.GetScoreboard)
		competitions.GET("/:id/score/export", h.ExportScoreboard)
		competitions.GET("/:id/ws", h.CompetitionWebSocket)

		admin := competitions.Group("")
		admin.Use(middleware.AdminMiddleware())
		admin.GET("/:id", h.GetCompetition)
		admin.POST("", h.CreateCompetition)
		admin.PUT("/:id", h.UpdateCompetition)
		admin.DELETE("/:id", h.DeleteCompetition)
	}

	signups := r.Group("/signups")
	signups.Use(auth)
	{
		signups.PUT("/:id/score", h.UpdateScore)
	}
}
