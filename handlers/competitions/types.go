package competitions

import (
	"errors"
	"net/http"
	"strconv"

	"contests/services"
	"contests/utils/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Error messages
const (
	ErrCompetitionNotFound     = "Competition not found"
	ErrSignupNotFound          = "Signup not found"
	ErrInvalidRequest          = "Invalid request data"
	ErrFailedFetchCompetitions = "Failed to fetch competitions"
	ErrFailedCreateCompetition = "Failed to create competition"
	ErrFailedUpdateCompetition = "Failed to update competition"
	ErrFailedDeleteCompetition = "Failed to delete competition"
	ErrFailedSignup            = "Failed to sign up for competition"
	ErrFailedFetchScoreboard   = "Failed to fetch scoreboard"
	ErrFailedUpdateScore       = "Failed to update score"
	ErrFailedExportScoreboard  = "Failed to export scoreboard"
)

// UpdateScoreRequest is the body of a score update. CompetitionID must name the competition
// the signup belongs to.
type UpdateScoreRequest struct {
	CompetitionID uint     `json:"competition_id" binding:"required"`
	Score         *float64 `json:"score" binding:"required"`
}

// SignupResponse reports the outcome of a signup request
type SignupResponse struct {
	Status        string `json:"status"`
	CompetitionID uint   `json:"competition_id"`
}

// parseID reads a positive integer path parameter, answering 400 when it is not one
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ValidationError(c, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

// respondWithServiceError maps the service error taxonomy onto HTTP responses. Persistence
// failures are logged and answered with a generic message.
func respondWithServiceError(c *gin.Context, err error, notFound, failure string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		response.Error(c, http.StatusNotFound, notFound)
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error(failure)
		response.Error(c, http.StatusInternalServerError, failure)
	}
}
