package competitions

import (
	"net/http"

	"contests/middleware"
	"contests/realtime"
	"contests/services"

	"github.com/gin-gonic/gin"
)

// SignUp registers the caller for a competition
// @Summary Sign up for a competition
// @Description Sign the authenticated user up for a competition. Repeating the request is harmless.
// @Tags Competitions
// @Produce json
// @Param id path int true "Competition ID"
// @Success 201 {object} SignupResponse "signed up"
// @Success 200 {object} SignupResponse "already signed up"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /competitions/{id}/signup [post]
// @Security Bearer
func (h *Handler) SignUp(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	competitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	outcome, err := h.signups.SignUp(c.Request.Context(), user, competitionID)
	if err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedSignup)
		return
	}

	status := http.StatusOK
	if outcome == services.SignedUp {
		status = http.StatusCreated
		h.publishScoreboard(c, competitionID, realtime.UpdateSignup)
	}

	c.JSON(status, SignupResponse{Status: outcome.String(), CompetitionID: competitionID})
}
