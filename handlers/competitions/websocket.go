package competitions

import (
	"net/http"

	"contests/realtime"
	"contests/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func broadcastScoreboard(competitionID uint, updateType string, scoreboard []services.ScoreRow) {
	realtime.BroadcastScoreboard(realtime.ScoreboardUpdate{
		CompetitionID: competitionID,
		UpdateType:    updateType,
		Scoreboard:    scoreboard,
	})
}

// CompetitionWebSocket subscribes the caller to scoreboard updates of a competition
// @Summary Scoreboard updates over WebSocket
// @Description Upgrade to a WebSocket receiving a scoreboard snapshot after every signup and score change
// @Tags Competitions
// @Param id path int true "Competition ID"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /competitions/{id}/ws [get]
// @Security Bearer
func (h *Handler) CompetitionWebSocket(c *gin.Context) {
	competitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.competitions.Get(c.Request.Context(), competitionID); err != nil {
		respondWithServiceError(c, err, ErrCompetitionNotFound, ErrFailedFetchCompetitions)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	realtime.RegisterClient(competitionID, conn)
	defer func() {
		realtime.UnregisterClient(competitionID, conn)
		conn.Close()
	}()

	// Clients only listen; reading detects when they go away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
