package competitions

import (
	"net/http"

	"contests/middleware"
	"contests/services"
	"contests/utils/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GetAllCompetitions lists every competition
// @Summary Get all competitions
// @Description Get all competitions with their author, ordered by application deadline
// @Tags Competitions
// @Produce json
// @Success 200 {array} services.CompetitionSummary
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /competitions [get]
// @Security Bearer
func (h *Handler) GetAllCompetitions(c *gin.Context) {
	items, err := h.competitions.List(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedFetchCompetitions)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetCompetition returns one competition, e.g. to prefill an edit form
// @Summary Get a competition
// @Description Get a competition by ID
// @Tags Competitions
// @Produce json
// @Param id path int true "Competition ID"
// @Success 200 {object} models.Competition
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /competitions/{id} [get]
// @Security Bearer
func (h *Handler) GetCompetition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	competition, err := h.competitions.Get(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedFetchCompetitions)
		return
	}

	c.JSON(http.StatusOK, competition)
}

// CreateCompetition creates a competition authored by the caller
// @Summary Create a competition
// @Description Create a new competition
// @Tags Competitions
// @Accept json
// @Produce json
// @Param competition body services.CompetitionInput true "Competition to create"
// @Success 201 {object} models.Competition
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /competitions [post]
// @Security Bearer
func (h *Handler) CreateCompetition(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	var req services.CompetitionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	competition, err := h.competitions.Create(c.Request.Context(), req, user.ID)
	if err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedCreateCompetition)
		return
	}

	c.JSON(http.StatusCreated, competition)
}

// UpdateCompetition edits name, description and deadline of a competition
// @Summary Update a competition
// @Description Update name, description and application deadline of a competition
// @Tags Competitions
// @Accept json
// @Produce json
// @Param id path int true "Competition ID"
// @Param competition body services.CompetitionInput true "New values"
// @Success 200 {object} models.Competition
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /competitions/{id} [put]
// @Security Bearer
func (h *Handler) UpdateCompetition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.CompetitionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	if err := h.competitions.Edit(ctx, id, req); err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedUpdateCompetition)
		return
	}

	competition, err := h.competitions.Get(ctx, id)
	if err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedUpdateCompetition)
		return
	}

	c.JSON(http.StatusOK, competition)
}

// DeleteCompetition deletes a competition together with its signups
// @Summary Delete a competition
// @Description Delete a competition and every signup for it
// @Tags Competitions
// @Produce json
// @Param id path int true "Competition ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /competitions/{id} [delete]
// @Security Bearer
func (h *Handler) DeleteCompetition(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.competitions.Delete(c.Request.Context(), id); err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedDeleteCompetition)
		return
	}

	user, _ := middleware.GetUserFromRequest(c)
	log.Printf("Competition %d deleted by user %d", id, user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Competition deleted"})
}
