package competitions

import (
	"bytes"
	"fmt"
	"net/http"

	"contests/realtime"
	"contests/utils/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetScoreboard returns the ranked scoreboard of a competition
// @Summary Get the scoreboard of a competition
// @Description Signups ordered by score ascending, unscored participants last
// @Tags Competitions
// @Produce json
// @Param id path int true "Competition ID"
// @Success 200 {array} services.ScoreRow
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /competitions/{id}/score [get]
// @Security Bearer
func (h *Handler) GetScoreboard(c *gin.Context) {
	competitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	rows, err := h.scores.GetScoreboard(c.Request.Context(), competitionID)
	if err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedFetchScoreboard)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// UpdateScore records the score of one signup and answers with the refreshed scoreboard
// @Summary Update the score of a signup
// @Description Set the score of a signup. competition_id must be the competition the signup belongs to.
// @Tags Competitions
// @Accept json
// @Produce json
// @Param id path int true "Signup ID"
// @Param score body UpdateScoreRequest true "New score"
// @Success 200 {array} services.ScoreRow
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /signups/{id}/score [put]
// @Security Bearer
func (h *Handler) UpdateScore(c *gin.Context) {
	signupID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	if err := h.scores.UpdateScore(ctx, signupID, req.CompetitionID, *req.Score); err != nil {
		respondWithServiceError(c, err, ErrSignupNotFound, ErrFailedUpdateScore)
		return
	}

	rows, err := h.scores.GetScoreboard(ctx, req.CompetitionID)
	if err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedFetchScoreboard)
		return
	}
	h.publish(req.CompetitionID, realtime.UpdateScore, rows)

	c.JSON(http.StatusOK, rows)
}

// ExportScoreboard streams the scoreboard as an Excel workbook
// @Summary Export the scoreboard of a competition
// @Description Download the scoreboard as an .xlsx file
// @Tags Competitions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Competition ID"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /competitions/{id}/score/export [get]
// @Security Bearer
func (h *Handler) ExportScoreboard(c *gin.Context) {
	competitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.scores.ExportScoreboard(c.Request.Context(), competitionID, &buf); err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedExportScoreboard)
		return
	}

	filename := fmt.Sprintf("competition_%d_scoreboard.xlsx", competitionID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// publishScoreboard pushes the current scoreboard to realtime subscribers. Failures only get logged.
func (h *Handler) publishScoreboard(c *gin.Context, competitionID uint, updateType string) {
	rows, err := h.scores.GetScoreboard(c.Request.Context(), competitionID)
	if err != nil {
		log.WithError(err).WithField("competition_id", competitionID).Warn("Failed to load scoreboard for broadcast")
		return
	}
	h.publish(competitionID, updateType, rows)
}
