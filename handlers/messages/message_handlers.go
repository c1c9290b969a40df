package messages

import (
	"net/http"

	"contests/middleware"
	"contests/utils/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const ErrFailedFetchMessages = "Failed to fetch messages"

// GetInbox returns the notifications addressed to the caller, newest first
// @Summary Get the inbox of the current administrator
// @Description Notifications such as new signups, newest first
// @Tags Messages
// @Produce json
// @Success 200 {array} models.Message
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /messages [get]
// @Security Bearer
func (h *Handler) GetInbox(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	inbox, err := h.sink.Inbox(c.Request.Context(), user.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error(ErrFailedFetchMessages)
		response.Error(c, http.StatusInternalServerError, ErrFailedFetchMessages)
		return
	}

	c.JSON(http.StatusOK, inbox)
}
